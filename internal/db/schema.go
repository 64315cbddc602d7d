package db

import "gorm.io/gorm"

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// EnsureIndex runs idempotent index DDL. AutoMigrate cannot express partial
// indexes, so features that need them pass the raw statement here.
func EnsureIndex(d *gorm.DB, ddl string) error {
	return d.Exec(ddl).Error
}

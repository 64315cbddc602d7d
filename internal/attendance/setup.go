package attendance

import (
	"log"
	"time"

	"github.com/GeoAttend/GA-Backend/internal/config"
	"github.com/GeoAttend/GA-Backend/internal/db"
	"github.com/GeoAttend/GA-Backend/internal/roster"
)

var (
	engine    *Engine
	lifecycle *Lifecycle

	accuracyLimitM     float64
	claimRatePerSecond float64
	claimRateBurst     int
)

func Init(cfg *config.Config) {
	if err := db.EnsureSchema(db.DB, "attendance"); err != nil {
		log.Fatal("Failed to ensure schema attendance: ", err)
	}

	if err := db.DB.AutoMigrate(&Session{}, &AttendanceRecord{}, &DeviceFingerprint{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	// The whole single-active-session invariant hangs on this index; a
	// plain unique column can't express "unique only while active".
	err := db.EnsureIndex(db.DB, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active_per_scope
		ON attendance.sessions (scope) WHERE status = 'active'
	`)
	if err != nil {
		log.Fatal("Failed to ensure active-session index: ", err)
	}

	sessions := GormSessionStore{}
	records := GormLedger{}

	lifecycle = &Lifecycle{
		Sessions: sessions,
		Policy: Policy{
			Scope:           cfg.Scope,
			RadiusMeters:    cfg.GeofenceRadiusM,
			SessionDuration: cfg.SessionDuration,
		},
		Now: time.Now,
	}

	engine = &Engine{
		Sessions: sessions,
		Records:  records,
		Students: roster.Finder{},
		Now:      time.Now,
	}

	accuracyLimitM = cfg.AccuracyLimitM
	claimRatePerSecond = cfg.ClaimRatePerSecond
	claimRateBurst = cfg.ClaimRateBurst

	log.Printf("[attendance] scope=%s radius=%.0fm window=%s",
		cfg.Scope, cfg.GeofenceRadiusM, cfg.SessionDuration)
}

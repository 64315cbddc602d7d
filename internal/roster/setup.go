package roster

import (
	"log"

	"github.com/GeoAttend/GA-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "roster"); err != nil {
		log.Fatal("Failed to ensure schema roster: ", err)
	}

	if err := db.DB.AutoMigrate(&Student{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}

package main

import (
	"log"

	"github.com/GeoAttend/GA-Backend/internal/auth"
	"github.com/GeoAttend/GA-Backend/internal/db"
	"github.com/GeoAttend/GA-Backend/internal/roster"
	"github.com/GeoAttend/GA-Backend/internal/seeds"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	auth.Init()
	roster.Init()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

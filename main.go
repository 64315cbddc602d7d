package main

import (
	"fmt"
	"net/http"

	"github.com/GeoAttend/GA-Backend/internal/attendance"
	"github.com/GeoAttend/GA-Backend/internal/auth"
	"github.com/GeoAttend/GA-Backend/internal/config"
	"github.com/GeoAttend/GA-Backend/internal/db"
	"github.com/GeoAttend/GA-Backend/internal/middleware"
	"github.com/GeoAttend/GA-Backend/internal/reports"
	"github.com/GeoAttend/GA-Backend/internal/roster"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.Load()
	db.Connect()

	auth.Init()
	roster.Init()
	attendance.Init(cfg)
	reports.Init(cfg)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/roster", roster.SetupRoutes())
	r.Mount("/attendance", attendance.SetupRoutes())
	r.Mount("/reports", reports.SetupRoutes())

	fmt.Println("Server listening on port :" + cfg.Port + "...")

	http.ListenAndServe("0.0.0.0:"+cfg.Port, r)
}

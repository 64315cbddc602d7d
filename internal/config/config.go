package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Config carries the attendance policy knobs plus server wiring. Policy
// values come from an optional YAML file (ATTENDANCE_POLICY_FILE) and may be
// overridden per-key by environment variables.
type Config struct {
	Port        string `yaml:"-"`
	DatabaseURL string `yaml:"-"`

	// Scope identifies the course/class this deployment serves. One active
	// session is allowed per scope at any instant.
	Scope string `yaml:"scope"`

	SessionDuration    time.Duration `yaml:"session_duration"`
	GeofenceRadiusM    float64       `yaml:"geofence_radius_m"`
	AccuracyLimitM     float64       `yaml:"accuracy_limit_m"`
	ClaimRatePerSecond float64       `yaml:"claim_rate_per_second"`
	ClaimRateBurst     int           `yaml:"claim_rate_burst"`

	// EditWindowDays bounds how far back administrative attendance edits
	// are allowed (reporting feature).
	EditWindowDays int `yaml:"edit_window_days"`
}

func defaults() *Config {
	return &Config{
		Port:               "5050",
		Scope:              "BSC-ANTHRO",
		SessionDuration:    5 * time.Minute,
		GeofenceRadiusM:    80,
		AccuracyLimitM:     150,
		ClaimRatePerSecond: 5,
		ClaimRateBurst:     10,
		EditWindowDays:     7,
	}
}

func Load() *Config {
	cfg := defaults()

	if path := os.Getenv("ATTENDANCE_POLICY_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("[config] cannot read policy file %s: %v", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			log.Fatalf("[config] cannot parse policy file %s: %v", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Scope = getEnv("ATTENDANCE_SCOPE", cfg.Scope)
	cfg.SessionDuration = getEnvDuration("SESSION_DURATION", cfg.SessionDuration)
	cfg.GeofenceRadiusM = getEnvFloat("GEOFENCE_RADIUS_M", cfg.GeofenceRadiusM)
	cfg.AccuracyLimitM = getEnvFloat("ACCURACY_LIMIT_M", cfg.AccuracyLimitM)

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

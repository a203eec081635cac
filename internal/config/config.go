// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/farecast/travel-backend/internal/engine"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// ProviderTimeout bounds a single adapter query during aggregation.
	// Defaults to 10s. Adapters exceeding it contribute nothing.
	ProviderTimeout time.Duration

	// Scoring is the value-score calibration. Defaults match the
	// documented baseline (caps 10000 / 600, weights 0.5 / 0.3 / 0.2).
	// Weights must sum to 1.
	Scoring engine.Scorer

	// Provider credentials. Adapters whose credentials are unset fail
	// structurally at query time: individually that means an empty
	// contribution, collectively an aggregation error.
	IRCTCAPIKey      string
	RedBusAPIKey     string
	SkyscannerAPIKey string
	UberClientID     string
	UberClientSecret string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// describing an invalid scoring calibration.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		IRCTCAPIKey:      os.Getenv("IRCTC_API_KEY"),
		RedBusAPIKey:     os.Getenv("REDBUS_API_KEY"),
		SkyscannerAPIKey: os.Getenv("SKYSCANNER_API_KEY"),
		UberClientID:     os.Getenv("UBER_CLIENT_ID"),
		UberClientSecret: os.Getenv("UBER_CLIENT_SECRET"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	timeout, err := getDuration("PROVIDER_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ProviderTimeout = timeout

	scoring, err := loadScoring()
	if err != nil {
		return Config{}, err
	}
	cfg.Scoring = scoring

	return cfg, nil
}

// loadScoring reads the value-score calibration, starting from the engine
// defaults and applying any overrides. The three weights must sum to 1 so a
// partial override cannot silently skew every score.
func loadScoring() (engine.Scorer, error) {
	s := engine.NewScorer()

	var err error
	if s.PriceCap, err = getFloat("PRICE_CAP", s.PriceCap); err != nil {
		return engine.Scorer{}, err
	}
	if s.TimeCap, err = getFloat("TIME_CAP", s.TimeCap); err != nil {
		return engine.Scorer{}, err
	}
	if s.PriceWeight, err = getFloat("PRICE_WEIGHT", s.PriceWeight); err != nil {
		return engine.Scorer{}, err
	}
	if s.TimeWeight, err = getFloat("TIME_WEIGHT", s.TimeWeight); err != nil {
		return engine.Scorer{}, err
	}
	if s.ComfortWeight, err = getFloat("COMFORT_WEIGHT", s.ComfortWeight); err != nil {
		return engine.Scorer{}, err
	}

	if s.PriceCap <= 0 || s.TimeCap <= 0 {
		return engine.Scorer{}, fmt.Errorf("PRICE_CAP and TIME_CAP must be positive")
	}
	if sum := s.PriceWeight + s.TimeWeight + s.ComfortWeight; math.Abs(sum-1) > 1e-9 {
		return engine.Scorer{}, fmt.Errorf("scoring weights must sum to 1, got %g", sum)
	}

	return s, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getFloat parses the environment variable named by key as a float64,
// falling back when unset.
func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}

// getDuration parses the environment variable named by key as a Go duration
// string (e.g. "5s"), falling back when unset.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like \"5s\", got %q", key, v)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

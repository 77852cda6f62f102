package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the meter core.
type Config struct {
	AppEnv string

	// HistoryPath and SettingsPath locate the JSON stores. DatabaseURL, when
	// set, switches the trip history to the Postgres repository instead.
	HistoryPath  string
	SettingsPath string
	DatabaseURL  string

	// GoogleMapsAPIKey enables live reverse geocoding; empty disables it.
	GoogleMapsAPIKey string

	GeocodeCacheSize int
	SaveDebounce     time.Duration
}

// Load reads configuration from environment variables, with .env support.
func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:           getenvDefault("APP_ENV", "production"),
		HistoryPath:      getenvDefault("METER_HISTORY_PATH", "trips.json"),
		SettingsPath:     getenvDefault("METER_SETTINGS_PATH", "settings.json"),
		DatabaseURL:      os.Getenv("METER_DATABASE_URL"),
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
	}

	if v := os.Getenv("METER_GEOCODE_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid METER_GEOCODE_CACHE_SIZE: %q", v)
		}
		cfg.GeocodeCacheSize = n
	} else {
		cfg.GeocodeCacheSize = 48
	}

	if v := os.Getenv("METER_SAVE_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid METER_SAVE_DEBOUNCE_MS: %q", v)
		}
		cfg.SaveDebounce = time.Duration(ms) * time.Millisecond
	} else {
		cfg.SaveDebounce = 500 * time.Millisecond
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

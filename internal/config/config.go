package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// History backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	OpenWeatherTileURL string

	// HTTPTimeout bounds every outbound provider request.
	HTTPTimeout time.Duration

	// DisplayLocation is the zone forecast hours and dates are read in.
	DisplayLocation *time.Location

	// Search history persistence.
	HistoryBackend string // memory, file or redis
	HistoryDir     string
	RedisURL       string

	// RefreshInterval re-runs the displayed search periodically (0 = off).
	RefreshInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultOpenWeatherBaseURL)
	cfg.OpenWeatherTileURL = getenvDefault("OPENWEATHER_TILE_URL", providers.DefaultOpenWeatherTileURL)

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	loc, err := time.LoadLocation(getenvDefault("DISPLAY_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}
	cfg.DisplayLocation = loc

	cfg.HistoryBackend = strings.ToLower(getenvDefault("HISTORY_BACKEND", BackendMemory))
	switch cfg.HistoryBackend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return nil, fmt.Errorf("invalid HISTORY_BACKEND %q: want memory, file or redis", cfg.HistoryBackend)
	}
	cfg.HistoryDir = getenvDefault("HISTORY_DIR", ".weather-dashboard")
	cfg.RedisURL = getenvDefault("REDIS_URL", "redis://localhost:6379/0")

	// Auto-refresh: disabled by default.
	refresh, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	if refresh < 0 {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: must not be negative")
	}
	cfg.RefreshInterval = refresh

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

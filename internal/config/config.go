package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/i474232898/weather-region-dashboard/internal/weather/providers"
)

const (
	ProviderOpenMeteo  = "openmeteo"
	ProviderWeatherAPI = "weatherapi"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type AppConfig struct {
	Port     string
	LogLevel zapcore.Level

	// Weather provider selection and endpoints.
	Provider            string
	OpenMeteoArchiveURL string
	WeatherAPIKey       string
	WeatherAPIURL       string

	// HTTPTimeout of 0 means no client timeout.
	HTTPTimeout     time.Duration
	FetchMaxRetries int

	CacheBackend string
	RedisURL     string

	TimelineDaysBefore int
	TimelineDaysAfter  int

	MinVertices int
	MaxVertices int

	MapCenterLat float64
	MapCenterLng float64
	MapZoom      int

	// DisplayLocation is the zone used for labels and for picking the hour of day.
	DisplayLocation *time.Location

	// ColorRulesFile optionally replaces the default temperature bands.
	ColorRulesFile string

	// RefreshInterval re-fetches all regions periodically; 0 disables it.
	RefreshInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:                getenvDefault("PORT", "8080"),
		Provider:            getenvDefault("WEATHER_PROVIDER", ProviderOpenMeteo),
		OpenMeteoArchiveURL: getenvDefault("OPENMETEO_ARCHIVE_URL", providers.DefaultOpenMeteoArchiveURL),
		WeatherAPIKey:       os.Getenv("WEATHERAPI_API_KEY"),
		WeatherAPIURL:       getenvDefault("WEATHERAPI_HISTORY_URL", providers.DefaultWeatherAPIHistoryURL),
		CacheBackend:        getenvDefault("CACHE_BACKEND", CacheMemory),
		RedisURL:            getenvDefault("REDIS_URL", "redis://localhost:6379/0"),
		ColorRulesFile:      os.Getenv("COLOR_RULES_FILE"),
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"FETCH_MAX_RETRIES", 0, &cfg.FetchMaxRetries},
		{"TIMELINE_DAYS_BEFORE", 15, &cfg.TimelineDaysBefore},
		{"TIMELINE_DAYS_AFTER", 15, &cfg.TimelineDaysAfter},
		{"MIN_VERTICES", 3, &cfg.MinVertices},
		{"MAX_VERTICES", 12, &cfg.MaxVertices},
		{"MAP_ZOOM", 10, &cfg.MapZoom},
	}
	for _, v := range ints {
		n, err := getenvInt(v.key, v.def)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}

	level, err := zapcore.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0s"); err != nil {
		return nil, err
	}

	if cfg.MapCenterLat, err = getenvFloat("MAP_CENTER_LAT", 52.52); err != nil {
		return nil, err
	}
	if cfg.MapCenterLng, err = getenvFloat("MAP_CENTER_LNG", 13.41); err != nil {
		return nil, err
	}

	tz := getenvDefault("DISPLAY_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}
	cfg.DisplayLocation = loc

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Provider {
	case ProviderOpenMeteo:
	case ProviderWeatherAPI:
		if c.WeatherAPIKey == "" {
			return fmt.Errorf("WEATHERAPI_API_KEY is required when WEATHER_PROVIDER=%s", ProviderWeatherAPI)
		}
	default:
		return fmt.Errorf("unknown WEATHER_PROVIDER %q", c.Provider)
	}

	switch c.CacheBackend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.MinVertices < 3 {
		return fmt.Errorf("MIN_VERTICES must be at least 3, got %d", c.MinVertices)
	}
	if c.MaxVertices < c.MinVertices {
		return fmt.Errorf("MAX_VERTICES (%d) must not be below MIN_VERTICES (%d)", c.MaxVertices, c.MinVertices)
	}
	if c.TimelineDaysBefore < 0 || c.TimelineDaysAfter < 0 || c.TimelineDaysBefore+c.TimelineDaysAfter == 0 {
		return fmt.Errorf("timeline window must be non-empty")
	}
	if c.FetchMaxRetries < 0 {
		return fmt.Errorf("FETCH_MAX_RETRIES must not be negative")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

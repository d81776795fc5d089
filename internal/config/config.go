package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/logging"
)

type AppConfig struct {
	OpenAQAPIKey     string
	OpenAQBaseURL    string
	HTTPTimeout      time.Duration
	OpenAQMaxRetries int

	// Cache lifetimes.
	CurrentCacheTTL   time.Duration
	DashboardCacheTTL time.Duration
	ForecastCacheTTL  time.Duration

	HistoryMax     int // max number of readings kept
	HistoryDays    int // history window used for the forecast trend
	ForecastWeeks  int
	AlertThreshold int

	// DefaultLocation is used when a request carries no coordinate.
	DefaultLocation airquality.Coordinate

	StoreDriver   string
	StorePath     string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	GeocoderAPIKey string

	// FetchInterval controls how often watched locations are refreshed.
	FetchInterval  time.Duration
	WatchLocations []airquality.Coordinate

	Port  string
	Debug bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logging.Default().Infof("config: no .env file loaded: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.OpenAQAPIKey = os.Getenv("OPENAQ_API_KEY")
	cfg.OpenAQBaseURL = getenvDefault("OPENAQ_BASE_URL", "https://api.openaq.org/v3")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.CurrentCacheTTL, err = getenvDuration("CURRENT_CACHE_TTL", "1h"); err != nil {
		return nil, err
	}
	if cfg.DashboardCacheTTL, err = getenvDuration("DASHBOARD_CACHE_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.ForecastCacheTTL, err = getenvDuration("FORECAST_CACHE_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	if cfg.OpenAQMaxRetries, err = getenvInt("OPENAQ_MAX_RETRIES", 1); err != nil {
		return nil, err
	}
	if cfg.HistoryMax, err = getenvInt("HISTORY_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.HistoryDays, err = getenvInt("HISTORY_DAYS", 90); err != nil {
		return nil, err
	}
	if cfg.ForecastWeeks, err = getenvInt("FORECAST_WEEKS", 10); err != nil {
		return nil, err
	}
	if cfg.AlertThreshold, err = getenvInt("ALERT_THRESHOLD", 100); err != nil {
		return nil, err
	}

	if cfg.DefaultLocation, err = loadDefaultLocation(); err != nil {
		return nil, err
	}
	if cfg.WatchLocations, err = ParseLocations(os.Getenv("WATCH_LOCATIONS")); err != nil {
		return nil, fmt.Errorf("invalid WATCH_LOCATIONS: %w", err)
	}

	cfg.StoreDriver = getenvDefault("STORE_DRIVER", "file")
	cfg.StorePath = getenvDefault("STORE_PATH", "air-quality.json")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.MongoURI = os.Getenv("MONGO_URI")
	cfg.MongoDatabase = getenvDefault("MONGO_DATABASE", "air_quality")

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.Debug, _ = strconv.ParseBool(os.Getenv("DEBUG"))

	return cfg, nil
}

func loadDefaultLocation() (airquality.Coordinate, error) {
	c := airquality.DefaultCoordinate
	if v := os.Getenv("DEFAULT_LAT"); v != "" {
		lat, err := parseCoordinatePart(v, 90)
		if err != nil {
			return c, fmt.Errorf("invalid DEFAULT_LAT: %w", err)
		}
		c.Latitude = lat
	}
	if v := os.Getenv("DEFAULT_LNG"); v != "" {
		lng, err := parseCoordinatePart(v, 180)
		if err != nil {
			return c, fmt.Errorf("invalid DEFAULT_LNG: %w", err)
		}
		c.Longitude = lng
	}
	return c, nil
}

// ParseLocations parses "lat,lng;lat,lng". Empty input yields no locations.
func ParseLocations(s string) ([]airquality.Coordinate, error) {
	var locs []airquality.Coordinate
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected lat,lng but got %q", pair)
		}
		lat, err := parseCoordinatePart(parts[0], 90)
		if err != nil {
			return nil, fmt.Errorf("latitude in %q: %w", pair, err)
		}
		lng, err := parseCoordinatePart(parts[1], 180)
		if err != nil {
			return nil, fmt.Errorf("longitude in %q: %w", pair, err)
		}
		locs = append(locs, airquality.Coordinate{Latitude: lat, Longitude: lng})
	}
	return locs, nil
}

func parseCoordinatePart(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("%v outside [-%v,%v]", v, limit, limit)
	}
	return v, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
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

package config

import (
	"testing"
	"time"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"OPENAQ_BASE_URL", "HTTP_TIMEOUT", "CURRENT_CACHE_TTL", "HISTORY_MAX",
		"FORECAST_WEEKS", "DEFAULT_LAT", "DEFAULT_LNG", "WATCH_LOCATIONS",
		"STORE_DRIVER", "PORT", "DEBUG",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.OpenAQBaseURL != "https://api.openaq.org/v3" {
		t.Errorf("unexpected base url %q", cfg.OpenAQBaseURL)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.CurrentCacheTTL != time.Hour {
		t.Errorf("unexpected durations %v %v", cfg.HTTPTimeout, cfg.CurrentCacheTTL)
	}
	if cfg.HistoryMax != 100 || cfg.ForecastWeeks != 10 {
		t.Errorf("unexpected limits %d %d", cfg.HistoryMax, cfg.ForecastWeeks)
	}
	if cfg.DefaultLocation != airquality.DefaultCoordinate {
		t.Errorf("unexpected default location %+v", cfg.DefaultLocation)
	}
	if cfg.StoreDriver != "file" || cfg.Port != "8080" || cfg.Debug {
		t.Errorf("unexpected store/port/debug %q %q %v", cfg.StoreDriver, cfg.Port, cfg.Debug)
	}
	if len(cfg.WatchLocations) != 0 {
		t.Errorf("expected no watch locations, got %v", cfg.WatchLocations)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FORECAST_CACHE_TTL", "5m")
	t.Setenv("ALERT_THRESHOLD", "150")
	t.Setenv("DEFAULT_LAT", "28.6139")
	t.Setenv("DEFAULT_LNG", "77.209")
	t.Setenv("WATCH_LOCATIONS", "40.7128,-74.006; 51.5074,-0.1278")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ForecastCacheTTL != 5*time.Minute || cfg.AlertThreshold != 150 {
		t.Errorf("unexpected overrides %v %d", cfg.ForecastCacheTTL, cfg.AlertThreshold)
	}
	if cfg.DefaultLocation != (airquality.Coordinate{Latitude: 28.6139, Longitude: 77.209}) {
		t.Errorf("unexpected default location %+v", cfg.DefaultLocation)
	}
	if len(cfg.WatchLocations) != 2 || cfg.WatchLocations[1].Longitude != -0.1278 {
		t.Errorf("unexpected watch locations %+v", cfg.WatchLocations)
	}
	if !cfg.Debug {
		t.Error("expected debug on")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"HTTP_TIMEOUT":    "soon",
		"HISTORY_MAX":     "many",
		"DEFAULT_LAT":     "91",
		"WATCH_LOCATIONS": "40.7,-74.0;nowhere",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestParseLocations(t *testing.T) {
	locs, err := ParseLocations(" 1.5,2.5 ;;-3,4")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(locs) != 2 || locs[0].Latitude != 1.5 || locs[1].Latitude != -3 {
		t.Fatalf("unexpected locations %+v", locs)
	}

	if _, err := ParseLocations("1,2,3"); err == nil {
		t.Fatal("expected error for three components")
	}
	if _, err := ParseLocations("10,200"); err == nil {
		t.Fatal("expected error for longitude out of range")
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/config"
	"github.com/i474232898/air-quality-dashboard/internal/forecast"
)

func testApplication(t *testing.T) *application {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.AppConfig{
		OpenAQBaseURL:     upstream.URL,
		HTTPTimeout:       2 * time.Second,
		CurrentCacheTTL:   time.Hour,
		DashboardCacheTTL: 10 * time.Minute,
		ForecastCacheTTL:  30 * time.Minute,
		HistoryMax:        100,
		HistoryDays:       90,
		ForecastWeeks:     10,
		AlertThreshold:    100,
		DefaultLocation:   airquality.DefaultCoordinate,
		StoreDriver:       "memory",
	}
	app, err := newApplication(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func execute(t *testing.T, app *application, args ...string) []byte {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(withApplication(context.Background(), app)); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.Bytes()
}

func TestCurrentCommand(t *testing.T) {
	app := testApplication(t)

	var body struct {
		Reading airquality.Reading `json:"reading"`
	}
	if err := json.Unmarshal(execute(t, app, "current", "--lat", "28.6", "--lng", "77.2"), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Reading.City != "Delhi" || !body.Reading.IsMock {
		t.Fatalf("unexpected reading %+v", body.Reading)
	}
}

func TestForecastAndHistoryCommands(t *testing.T) {
	app := testApplication(t)

	var points []forecast.Point
	if err := json.Unmarshal(execute(t, app, "forecast", "--weeks", "4"), &points); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 weeks, got %d", len(points))
	}

	var readings []airquality.Reading
	if err := json.Unmarshal(execute(t, app, "history", "--days", "1"), &readings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("expected the reading fetched for the forecast, got %d", len(readings))
	}

	if out := execute(t, app, "clear-cache"); !bytes.Contains(out, []byte("cleared")) {
		t.Fatalf("unexpected output %q", out)
	}
}

// Package dashboard assembles what the dashboard screen shows: the current
// reading, its category, the forecast and an optional alert.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/withmandala/go-log"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/aqi"
	"github.com/i474232898/air-quality-dashboard/internal/cache"
	"github.com/i474232898/air-quality-dashboard/internal/forecast"
	"github.com/i474232898/air-quality-dashboard/internal/logging"
)

// DefaultCacheTTL bounds how long a loaded reading is shown without asking
// the air quality service again.
const DefaultCacheTTL = 10 * time.Minute

// CurrentService is the part of the air quality service the dashboard uses.
type CurrentService interface {
	FetchCurrent(ctx context.Context, c airquality.Coordinate) airquality.Reading
	ClearCache(ctx context.Context)
}

// Forecaster is the part of the forecast engine the dashboard uses.
type Forecaster interface {
	Predict(ctx context.Context, c airquality.Coordinate, weeks int) []forecast.Point
	ClearCache(ctx context.Context)
}

// View is one rendering of the dashboard.
type View struct {
	Coordinate airquality.Coordinate `json:"coordinate"`
	Reading    airquality.Reading    `json:"reading"`
	Category   aqi.Category          `json:"category"`
	Forecast   []forecast.Point      `json:"forecast"`
	LastUpdate time.Time             `json:"lastUpdate"`
	UpdatedAgo string                `json:"updatedAgo"`
	Alert      *Alert                `json:"alert,omitempty"`
}

// Config configures a Dashboard. Zero values select the defaults.
type Config struct {
	CacheTTL       time.Duration
	Weeks          int
	AlertThreshold int
	Now            func() time.Time
	Logger         *log.Logger
}

// Dashboard puts a short-lived reading cache in front of the air quality
// service and combines the reading with a forecast.
type Dashboard struct {
	current  CurrentService
	forecast Forecaster
	cache    *cache.TTL[airquality.Reading]

	weeks     int
	threshold int
	now       func() time.Time
	logger    *log.Logger
}

// New creates a Dashboard.
func New(current CurrentService, forecaster Forecaster, cfg Config) *Dashboard {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Weeks <= 0 {
		cfg.Weeks = forecast.DefaultWeeks
	}
	if cfg.AlertThreshold <= 0 {
		cfg.AlertThreshold = DefaultAlertThreshold
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	return &Dashboard{
		current:  current,
		forecast: forecaster,
		cache: cache.New[airquality.Reading](cache.Config{
			TTL:    cfg.CacheTTL,
			Now:    cfg.Now,
			Logger: cfg.Logger,
		}),
		weeks:     cfg.Weeks,
		threshold: cfg.AlertThreshold,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
}

func cacheKey(c airquality.Coordinate) string {
	return fmt.Sprintf("aq-%s-%s",
		strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		strconv.FormatFloat(c.Longitude, 'f', -1, 64))
}

// Load returns the dashboard for c. weeks < 1 uses the configured horizon.
func (d *Dashboard) Load(ctx context.Context, c airquality.Coordinate, weeks int) View {
	if weeks < 1 {
		weeks = d.weeks
	}
	key := cacheKey(c)

	reading, ok := d.cache.Get(key)
	if !ok {
		reading = d.current.FetchCurrent(ctx, c)
		d.cache.Set(ctx, key, reading)
	}
	updated, _ := d.cache.StoredAt(key)

	view := View{
		Coordinate: c,
		Reading:    reading,
		Category:   aqi.CategoryFor(reading.AQI),
		Forecast:   d.forecast.Predict(ctx, c, weeks),
		LastUpdate: updated,
		UpdatedAgo: TimeSince(updated, d.now()),
	}

	if ShouldAlert(reading.AQI, d.threshold) {
		if a, ok := AlertFor(reading.AQI, reading.City); ok {
			d.logger.Warnf("dashboard: %s", a.Message)
			view.Alert = &a
		}
	}
	return view
}

// Refresh drops every cache on the way to the upstream API and loads again.
func (d *Dashboard) Refresh(ctx context.Context, c airquality.Coordinate, weeks int) View {
	d.ClearCache(ctx)
	return d.Load(ctx, c, weeks)
}

// ClearCache drops the dashboard, location and forecast caches.
func (d *Dashboard) ClearCache(ctx context.Context) {
	d.cache.Clear(ctx)
	d.current.ClearCache(ctx)
	d.forecast.ClearCache(ctx)
}

// TimeSince renders the age of an update the way the dashboard shows it.
func TimeSince(updated, now time.Time) string {
	if updated.IsZero() {
		return "Just now"
	}

	secs := int(now.Sub(updated) / time.Second)
	switch {
	case secs < 60:
		return "Just now"
	case secs < 3600:
		return fmt.Sprintf("%d minutes ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%d hours ago", secs/3600)
	default:
		return fmt.Sprintf("%d days ago", secs/86400)
	}
}

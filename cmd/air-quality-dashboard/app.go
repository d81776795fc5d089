package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/withmandala/go-log"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/airquality/providers"
	"github.com/i474232898/air-quality-dashboard/internal/config"
	"github.com/i474232898/air-quality-dashboard/internal/dashboard"
	"github.com/i474232898/air-quality-dashboard/internal/forecast"
	"github.com/i474232898/air-quality-dashboard/internal/logging"
	"github.com/i474232898/air-quality-dashboard/internal/store"
)

// application holds the wired components shared by every command.
type application struct {
	cfg    *config.AppConfig
	logger *log.Logger

	kv         store.KV
	closeStore func() error

	service   *airquality.Service
	engine    *forecast.Engine
	dashboard *dashboard.Dashboard
}

func newApplication(ctx context.Context, cfg *config.AppConfig) (*application, error) {
	logger := logging.New(cfg.Debug)

	kv, closeStore, err := store.Open(ctx, store.Options{
		Driver:        cfg.StoreDriver,
		Path:          cfg.StorePath,
		DatabaseURL:   cfg.DatabaseURL,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	// Shared HTTP client for outbound OpenAQ calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	strategies := providers.NewOpenAQStrategies(providers.OpenAQConfig{
		BaseURL: cfg.OpenAQBaseURL,
		APIKey:  cfg.OpenAQAPIKey,
		HTTP: providers.HTTPClientConfig{
			Client: httpClient,
			Backoff: providers.BackoffConfig{
				MaxRetries:      cfg.OpenAQMaxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
	})

	var cities airquality.CityResolver = airquality.BoundingBoxes{}
	if cfg.GeocoderAPIKey != "" {
		cities = providers.NewGeocoderResolver(cfg.GeocoderAPIKey, cities, logger)
	}

	service := airquality.NewService(kv, strategies,
		airquality.WithCacheTTL(cfg.CurrentCacheTTL),
		airquality.WithStrategyTimeout(cfg.HTTPTimeout),
		airquality.WithHistoryLimit(cfg.HistoryMax),
		airquality.WithCityResolver(cities),
		airquality.WithLogger(logger),
	)
	if err := service.Restore(ctx); err != nil {
		logger.Warnf("restoring location cache: %v", err)
	}

	engine := forecast.NewEngine(service, service, kv,
		forecast.WithCacheTTL(cfg.ForecastCacheTTL),
		forecast.WithHistoryDays(cfg.HistoryDays),
		forecast.WithLogger(logger),
	)

	dash := dashboard.New(service, engine, dashboard.Config{
		CacheTTL:       cfg.DashboardCacheTTL,
		Weeks:          cfg.ForecastWeeks,
		AlertThreshold: cfg.AlertThreshold,
		Logger:         logger,
	})

	return &application{
		cfg:        cfg,
		logger:     logger,
		kv:         kv,
		closeStore: closeStore,
		service:    service,
		engine:     engine,
		dashboard:  dash,
	}, nil
}

func (a *application) Close() {
	if err := a.closeStore(); err != nil {
		a.logger.Errorf("closing store: %v", err)
	}
}

type appKey struct{}

func withApplication(ctx context.Context, app *application) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

func appFrom(cmd *cobra.Command) *application {
	return cmd.Context().Value(appKey{}).(*application)
}

// coordinateFlags adds --lat/--lng defaulting to the configured location.
func coordinateFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", 0, "latitude (default: configured location)")
	cmd.Flags().Float64("lng", 0, "longitude (default: configured location)")
}

func coordinateFrom(cmd *cobra.Command, def airquality.Coordinate) (airquality.Coordinate, error) {
	c := def
	if cmd.Flags().Changed("lat") {
		c.Latitude, _ = cmd.Flags().GetFloat64("lat")
	}
	if cmd.Flags().Changed("lng") {
		c.Longitude, _ = cmd.Flags().GetFloat64("lng")
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return c, fmt.Errorf("coordinate %v,%v out of range", c.Latitude, c.Longitude)
	}
	return c, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/air-quality-dashboard/internal/api/http"
	"github.com/i474232898/air-quality-dashboard/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP API and the refresh scheduler",
	Long: `Start the local HTTP API used by the dashboard UI, together with the
scheduler that periodically refreshes the watched locations.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)
	cfg := app.cfg

	// Scheduler that periodically refreshes watched locations.
	sched := scheduler.New(cfg.WatchLocations, cfg.FetchInterval, cfg.ForecastWeeks, app.service, app.engine, app.logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	server := httpapi.NewApp("air-quality-dashboard", cfg.Debug)
	httpapi.RegisterRoutes(server, httpapi.Deps{
		AirQuality:      app.service,
		Forecaster:      app.engine,
		Dashboard:       app.dashboard,
		DefaultLocation: cfg.DefaultLocation,
		Weeks:           cfg.ForecastWeeks,
		HistoryDays:     cfg.HistoryDays,
	})

	go func() {
		app.logger.Infof("listening on :%s", cfg.Port)
		if err := server.Listen(":" + cfg.Port); err != nil {
			app.logger.Errorf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	app.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		app.logger.Errorf("error during shutdown: %v", err)
	}
	return nil
}

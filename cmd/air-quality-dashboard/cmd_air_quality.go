package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/air-quality-dashboard/internal/aqi"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the current air quality",
	Long:  `Fetch the current reading for a coordinate and print it as JSON.`,
	RunE:  runCurrent,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print the weekly AQI forecast",
	Long:  `Compute the weekly AQI forecast for a coordinate and print it as JSON.`,
	RunE:  runForecast,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print stored readings",
	Long:  `Print the readings kept in the local history, newest first.`,
	RunE:  runHistory,
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop cached readings and forecasts",
	Long:  `Clear the location, forecast and dashboard caches. History is kept.`,
	RunE:  runClearCache,
}

func init() {
	coordinateFlags(currentCmd)
	coordinateFlags(forecastCmd)
	forecastCmd.Flags().Int("weeks", 0, "forecast horizon in weeks, 1-52 (default: configured horizon)")
	historyCmd.Flags().Int("days", 0, "only readings from the last n days (default: configured window)")

	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCacheCmd)
}

func runCurrent(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)

	c, err := coordinateFrom(cmd, app.cfg.DefaultLocation)
	if err != nil {
		return err
	}

	reading := app.service.FetchCurrent(cmd.Context(), c)
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"reading":  reading,
		"category": aqi.CategoryFor(reading.AQI),
	})
}

func runForecast(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)

	c, err := coordinateFrom(cmd, app.cfg.DefaultLocation)
	if err != nil {
		return err
	}

	weeks, _ := cmd.Flags().GetInt("weeks")
	if weeks == 0 {
		weeks = app.cfg.ForecastWeeks
	}
	if weeks < 1 || weeks > 52 {
		return fmt.Errorf("weeks must be between 1 and 52, got %d", weeks)
	}

	return printJSON(cmd.OutOrStdout(), app.engine.Predict(cmd.Context(), c, weeks))
}

func runHistory(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)

	days, _ := cmd.Flags().GetInt("days")
	if days == 0 {
		days = app.cfg.HistoryDays
	}
	if days < 1 {
		return fmt.Errorf("days must be positive, got %d", days)
	}

	return printJSON(cmd.OutOrStdout(), app.service.Recent(cmd.Context(), days))
}

func runClearCache(cmd *cobra.Command, args []string) error {
	app := appFrom(cmd)
	app.dashboard.ClearCache(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), "caches cleared")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/air-quality-dashboard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "air-quality-dashboard",
	Short: "Air quality dashboard - current readings and weekly AQI forecasts",
	Long: `air-quality-dashboard fetches current air quality from OpenAQ, falls back
to consistent synthetic readings when the API is unavailable, and projects
a multi-week AQI forecast from the locally kept reading history.`,
	SilenceUsage: true,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx = withApplication(ctx, app)
	err = rootCmd.ExecuteContext(ctx)
	app.Close()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

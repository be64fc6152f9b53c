package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/sales-atlas/pkg/server"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/filters"
	"github.com/de-tools/sales-atlas/pkg/services/forecast"
	"github.com/de-tools/sales-atlas/pkg/services/insight"
	"github.com/de-tools/sales-atlas/pkg/services/narrative"
	"github.com/de-tools/sales-atlas/pkg/services/report"
	"github.com/de-tools/sales-atlas/pkg/services/series"
	"github.com/de-tools/sales-atlas/pkg/store/sales"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Sales Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the application config file (optional)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	appCfg, err := config.LoadAppConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}

	registry, err := config.NewRegistry(appCfg.Warehouse.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to create warehouse registry: %w", err)
	}

	profiles, _ := registry.GetProfiles(ctx)
	logger.Info().Msgf("Configuration found at `%s` successfully loaded.", appCfg.Warehouse.ConfigPath)
	for _, profile := range profiles {
		logger.Info().Msgf("Found warehouse profile `%s`", profile)
	}

	profile, err := registry.GetProfile(ctx, appCfg.Warehouse.Profile)
	if err != nil {
		return err
	}

	db, err := sales.OpenWarehouse(profile)
	if err != nil {
		return fmt.Errorf("failed to open warehouse %s: %w", profile.Name, err)
	}

	salesStore, err := sales.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create sales store: %w", err)
	}

	var generator narrative.Generator
	apiKey := appCfg.Gemini.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey != "" {
		generator = narrative.NewGemini(narrative.Config{
			APIKey: apiKey,
			Model:  appCfg.Gemini.Model,
		})
	} else {
		logger.Info().Msg("no Gemini API key configured, narratives disabled")
	}

	pool := forecast.NewPool(forecast.NewEngine(forecast.Config{}), 0)
	defer pool.Close()

	controller := report.NewController(
		series.NewBuilder(salesStore, series.Config{}),
		pool,
		insight.NewEvaluator(),
		report.NewAssembler(generator),
	)

	resolver := filters.NewResolver(salesStore, filters.Config{
		CacheTTL: appCfg.Filters.CacheTTL,
	})

	webAPI := server.NewWebAPI(server.Config{
		Addr:            net.JoinHostPort(appCfg.Server.Host, appCfg.Server.Port),
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Filters: resolver,
			Reports: controller,
			Logger:  logger,
		},
	})

	return webAPI.Start()
}

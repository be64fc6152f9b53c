package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/sales-atlas/pkg/export"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/forecast"
	"github.com/de-tools/sales-atlas/pkg/services/insight"
	"github.com/de-tools/sales-atlas/pkg/services/narrative"
	"github.com/de-tools/sales-atlas/pkg/services/report"
	"github.com/de-tools/sales-atlas/pkg/services/series"
	"github.com/de-tools/sales-atlas/pkg/store/sales"
)

type ReportCmd struct {
	configPath string
	profile    string

	salesOrg        string
	country         string
	region          string
	state           string
	city            string
	productLine     string
	productCategory string

	periods    int
	confidence float64

	reporter *export.Reporter
}

func NewReportCmd(reporter *export.Reporter) *cobra.Command {
	rc := &ReportCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a sales forecast report",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.configPath, "config", "warehouses.ini", "Path to the warehouse profile registry")
	cmd.Flags().StringVar(&rc.profile, "profile", "local", "Warehouse profile to query")

	cmd.Flags().StringVar(&rc.salesOrg, "sales-org", "", "Sales organization filter")
	cmd.Flags().StringVar(&rc.country, "country", "", "Country filter")
	cmd.Flags().StringVar(&rc.region, "region", "", "Region filter")
	cmd.Flags().StringVar(&rc.state, "state", "", "State filter")
	cmd.Flags().StringVar(&rc.city, "city", "", "City filter")
	cmd.Flags().StringVar(&rc.productLine, "product-line", "", "Product line filter")
	cmd.Flags().StringVar(&rc.productCategory, "product-category", "", "Product category filter")

	cmd.Flags().IntVar(&rc.periods, "periods", report.DefaultForecastPeriods, "Number of months to forecast (1-24)")
	cmd.Flags().Float64Var(&rc.confidence, "confidence", report.DefaultConfidenceInterval, "Confidence interval (0.80-0.99)")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	registry, err := config.NewRegistry(rc.configPath)
	if err != nil {
		return fmt.Errorf("failed to load warehouse registry: %w", err)
	}
	profile, err := registry.GetProfile(ctx, rc.profile)
	if err != nil {
		return err
	}

	db, err := sales.OpenWarehouse(profile)
	if err != nil {
		return err
	}
	defer db.Close()

	salesStore, err := sales.NewStore(db)
	if err != nil {
		return err
	}

	var generator narrative.Generator
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		generator = narrative.NewGemini(narrative.Config{APIKey: apiKey})
	}

	controller := report.NewController(
		series.NewBuilder(salesStore, series.Config{}),
		forecast.NewEngine(forecast.Config{}),
		insight.NewEvaluator(),
		report.NewAssembler(generator),
	)

	started := time.Now()
	payload, err := controller.GenerateReport(ctx, report.Request{
		Selection: domain.FilterSelection{
			domain.DimOrganization:    domain.NewFilterValue(rc.salesOrg),
			domain.DimCountry:         domain.NewFilterValue(rc.country),
			domain.DimRegion:          domain.NewFilterValue(rc.region),
			domain.DimState:           domain.NewFilterValue(rc.state),
			domain.DimCity:            domain.NewFilterValue(rc.city),
			domain.DimProductLine:     domain.NewFilterValue(rc.productLine),
			domain.DimProductCategory: domain.NewFilterValue(rc.productCategory),
		},
		Periods:    rc.periods,
		Confidence: rc.confidence,
	})
	if err != nil {
		return err
	}

	logger.Info().Dur("elapsed", time.Since(started)).Msg("report ready")
	return rc.reporter.Handle(payload)
}

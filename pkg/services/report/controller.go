package report

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/forecast"
	"github.com/de-tools/sales-atlas/pkg/services/insight"
	"github.com/de-tools/sales-atlas/pkg/services/series"
)

const (
	DefaultForecastPeriods    = 12
	DefaultConfidenceInterval = 0.95

	MaxForecastPeriods = 24
	MinConfidence      = 0.80
	MaxConfidence      = 0.99
)

// Request is one forecast report request after adapter normalization.
// Zero Periods/Confidence take the defaults.
type Request struct {
	Selection  domain.FilterSelection
	Periods    int
	Confidence float64
}

// Controller runs the full report pipeline for one request.
type Controller interface {
	GenerateReport(ctx context.Context, req Request) (*domain.ReportPayload, error)
}

type controller struct {
	builder   series.Builder
	engine    forecast.Engine
	evaluator insight.Evaluator
	assembler Assembler
}

func NewController(
	builder series.Builder,
	engine forecast.Engine,
	evaluator insight.Evaluator,
	assembler Assembler,
) Controller {
	return &controller{
		builder:   builder,
		engine:    engine,
		evaluator: evaluator,
		assembler: assembler,
	}
}

func (c *controller) GenerateReport(ctx context.Context, req Request) (*domain.ReportPayload, error) {
	req = withDefaults(req)
	if err := validate(req); err != nil {
		return nil, err
	}

	artifacts, err := c.builder.Build(ctx, req.Selection)
	if err != nil {
		return nil, err
	}

	values := artifacts.Values()
	fit, points, err := c.engine.FitForecast(ctx, values, req.Periods, req.Confidence)
	if err != nil {
		return nil, err
	}

	metrics := c.evaluator.Evaluate(values, fit, points)
	metrics.DataPoints = len(artifacts.Observations)
	metrics.ForecastPeriods = req.Periods
	metrics.ConfidenceInterval = req.Confidence

	payload := c.assembler.Assemble(ctx, AssembleInput{
		Selection: req.Selection,
		Artifacts: artifacts,
		Points:    points,
		Metrics:   metrics,
	})

	zerolog.Ctx(ctx).Info().
		Int("data_points", metrics.DataPoints).
		Int("forecast_periods", req.Periods).
		Float64("confidence", req.Confidence).
		Msg("report generated")

	return payload, nil
}

func withDefaults(req Request) Request {
	if req.Periods == 0 {
		req.Periods = DefaultForecastPeriods
	}
	if req.Confidence == 0 {
		req.Confidence = DefaultConfidenceInterval
	}
	if req.Selection == nil {
		req.Selection = domain.FilterSelection{}
	}
	return req
}

func validate(req Request) error {
	if req.Periods < 1 || req.Periods > MaxForecastPeriods {
		return &domain.InvalidSelectionError{
			Reason: "forecast_periods must be between 1 and 24",
		}
	}
	if req.Confidence < MinConfidence || req.Confidence > MaxConfidence {
		return &domain.InvalidSelectionError{
			Reason: "confidence_interval must be between 0.80 and 0.99",
		}
	}
	return nil
}

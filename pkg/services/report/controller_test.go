package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/services/forecast"
	"github.com/de-tools/sales-atlas/pkg/services/insight"
	"github.com/de-tools/sales-atlas/pkg/services/series"
)

type mockBuilder struct {
	mock.Mock
}

func (m *mockBuilder) Build(ctx context.Context, sel domain.FilterSelection) (*series.Artifacts, error) {
	args := m.Called(ctx, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*series.Artifacts), args.Error(1)
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) FitForecast(ctx context.Context, values []float64, horizon int, confidence float64) (*forecast.Fit, []forecast.Point, error) {
	args := m.Called(ctx, values, horizon, confidence)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*forecast.Fit), args.Get(1).([]forecast.Point), args.Error(2)
}

type controllerFixture struct {
	builder    *mockBuilder
	engine     *mockEngine
	controller Controller
}

func setupController(_ *testing.T) controllerFixture {
	builder := &mockBuilder{}
	engine := &mockEngine{}
	return controllerFixture{
		builder:    builder,
		engine:     engine,
		controller: NewController(builder, engine, insight.NewEvaluator(), NewAssembler(nil)),
	}
}

func flatArtifacts(n int) *series.Artifacts {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	artifacts := &series.Artifacts{}
	for i := 0; i < n; i++ {
		period := start.AddDate(0, i, 0)
		artifacts.Series = append(artifacts.Series, domain.TimeSeriesPoint{Period: period, Value: 1000})
		artifacts.Monthly = append(artifacts.Monthly, domain.MonthlyAggregate{Period: period, Revenue: 1000, SalesAmount: 10})
		artifacts.Observations = append(artifacts.Observations, store.SalesRecord{DueDate: period, RevenueEUR: 1000})
	}
	return artifacts
}

func TestController_GenerateReport(t *testing.T) {
	t.Run("pipeline runs series, fit, metrics and assembly", func(t *testing.T) {
		f := setupController(t)
		artifacts := flatArtifacts(36)
		f.builder.On("Build", mock.Anything, mock.Anything).Return(artifacts, nil)
		f.engine.On("FitForecast", mock.Anything, artifacts.Values(), 6, 0.9).Return(
			&forecast.Fit{Residuals: []float64{0, 0}, Offset: 13},
			[]forecast.Point{{Value: 1000, Lower: 990, Upper: 1010}, {Value: 1000, Lower: 985, Upper: 1015}},
			nil,
		)

		payload, err := f.controller.GenerateReport(context.Background(), Request{
			Selection:  domain.FilterSelection{domain.DimCountry: domain.NewFilterValue("Germany")},
			Periods:    6,
			Confidence: 0.9,
		})

		require.NoError(t, err)
		assert.Equal(t, 36, payload.Metrics.DataPoints)
		assert.Equal(t, 6, payload.Metrics.ForecastPeriods)
		assert.Equal(t, 0.9, payload.Metrics.ConfidenceInterval)
		assert.Equal(t, 1000.0, payload.Metrics.LatestActual)
		assert.Equal(t, 1000.0, payload.Metrics.LatestForecast)
		require.NotNil(t, payload.Metrics.MAPE)
		assert.Equal(t, 0.0, *payload.Metrics.MAPE)
		assert.Len(t, payload.Forecast, 2)
		f.builder.AssertExpectations(t)
		f.engine.AssertExpectations(t)
	})

	t.Run("defaults apply when periods and confidence are unset", func(t *testing.T) {
		f := setupController(t)
		artifacts := flatArtifacts(24)
		f.builder.On("Build", mock.Anything, mock.Anything).Return(artifacts, nil)
		f.engine.On("FitForecast", mock.Anything, mock.Anything, DefaultForecastPeriods, DefaultConfidenceInterval).Return(
			&forecast.Fit{Offset: 13},
			[]forecast.Point{{Value: 1000}},
			nil,
		)

		payload, err := f.controller.GenerateReport(context.Background(), Request{})

		require.NoError(t, err)
		assert.Equal(t, DefaultForecastPeriods, payload.Metrics.ForecastPeriods)
		assert.Equal(t, DefaultConfidenceInterval, payload.Metrics.ConfidenceInterval)
	})

	t.Run("out of range periods are rejected before any query", func(t *testing.T) {
		f := setupController(t)

		_, err := f.controller.GenerateReport(context.Background(), Request{Periods: 25, Confidence: 0.95})

		var invalidErr *domain.InvalidSelectionError
		require.ErrorAs(t, err, &invalidErr)
		assert.Contains(t, invalidErr.Reason, "forecast_periods")
		f.builder.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
	})

	t.Run("out of range confidence is rejected", func(t *testing.T) {
		f := setupController(t)

		_, err := f.controller.GenerateReport(context.Background(), Request{Periods: 12, Confidence: 0.5})

		var invalidErr *domain.InvalidSelectionError
		require.ErrorAs(t, err, &invalidErr)
		assert.Contains(t, invalidErr.Reason, "confidence_interval")
	})

	t.Run("insufficient data propagates unchanged", func(t *testing.T) {
		f := setupController(t)
		f.builder.On("Build", mock.Anything, mock.Anything).Return(nil, &domain.InsufficientDataError{Found: 10, Required: 24})

		_, err := f.controller.GenerateReport(context.Background(), Request{})

		var insufficientErr *domain.InsufficientDataError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, 10, insufficientErr.Found)
		f.engine.AssertNotCalled(t, "FitForecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("model failure propagates unchanged", func(t *testing.T) {
		f := setupController(t)
		f.builder.On("Build", mock.Anything, mock.Anything).Return(flatArtifacts(24), nil)
		f.engine.On("FitForecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(
			nil, nil, &domain.ModelFitError{Err: assert.AnError},
		)

		_, err := f.controller.GenerateReport(context.Background(), Request{})

		var fitErr *domain.ModelFitError
		require.ErrorAs(t, err, &fitErr)
	})

	t.Run("repeated requests produce identical payloads", func(t *testing.T) {
		f := setupController(t)
		artifacts := flatArtifacts(30)
		f.builder.On("Build", mock.Anything, mock.Anything).Return(artifacts, nil)
		f.engine.On("FitForecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(
			&forecast.Fit{Offset: 13},
			[]forecast.Point{{Value: 1000, Lower: 990, Upper: 1010}},
			nil,
		)

		first, err := f.controller.GenerateReport(context.Background(), Request{})
		require.NoError(t, err)
		second, err := f.controller.GenerateReport(context.Background(), Request{})
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

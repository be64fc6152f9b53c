package insight

import (
	"math"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/forecast"
)

// Evaluator scores a fitted model against the historical series.
type Evaluator interface {
	Evaluate(series []float64, fit *forecast.Fit, points []forecast.Point) domain.Metrics
}

type evaluator struct{}

func NewEvaluator() Evaluator {
	return evaluator{}
}

// Evaluate computes in-sample MAPE plus the latest actual and forecast
// values. MAPE only considers pairs with a non-zero actual and a defined
// residual; with no such pairs it stays nil so callers render "not enough
// data" instead of a misleading zero.
func (evaluator) Evaluate(series []float64, fit *forecast.Fit, points []forecast.Point) domain.Metrics {
	m := domain.Metrics{
		MAPE: mape(series, fit),
	}
	if len(series) > 0 {
		m.LatestActual = series[len(series)-1]
	}
	if len(points) > 0 {
		m.LatestForecast = points[len(points)-1].Value
	}
	return m
}

func mape(series []float64, fit *forecast.Fit) *float64 {
	if fit == nil {
		return nil
	}

	sum := 0.0
	count := 0
	for i, residual := range fit.Residuals {
		actual := series[i+fit.Offset]
		if actual == 0 || math.IsNaN(residual) {
			continue
		}
		sum += math.Abs(residual / actual)
		count++
	}
	if count == 0 {
		return nil
	}

	value := sum / float64(count) * 100
	return &value
}

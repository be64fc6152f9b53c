package forecast

import (
	"context"
	"fmt"
	"math"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	// SeasonalPeriod is the seasonal lag: one business year of monthly data.
	SeasonalPeriod = 12

	// DefaultMinDataPoints guards seasonal estimation: one full annual cycle
	// plus margin for the differenced series.
	DefaultMinDataPoints = 24

	// coefficients are clamped inside the unit circle so the forecast
	// recursion cannot diverge on noisy commercial data
	maxCoeff = 0.95
)

// Fit owns one request's fitted model state: SARIMA(1,1,1)(1,1,1) at period
// 12, estimated by conditional least squares on the doubly-differenced
// series. Never shared across requests.
type Fit struct {
	AR          float64 // non-seasonal AR(1)
	MA          float64 // non-seasonal MA(1)
	SeasonalAR  float64 // seasonal AR(1) at lag 12
	SeasonalMA  float64 // seasonal MA(1) at lag 12
	Mean        float64 // mean of the differenced series
	Residuals   []float64
	Offset      int // series index of the first residual
	ResidualStd float64
}

// Point is one horizon step of the forecast, bounds included.
type Point struct {
	Value float64
	Lower float64
	Upper float64
}

// Engine fits a seasonal model and projects future periods with a symmetric
// confidence band. Fitting is CPU-bound; concurrent servers should route
// calls through a Pool rather than invoking the engine inline.
type Engine interface {
	FitForecast(ctx context.Context, series []float64, horizon int, confidence float64) (*Fit, []Point, error)
}

type Config struct {
	MinDataPoints int
}

type engine struct {
	minPoints int
}

func NewEngine(cfg Config) Engine {
	minPoints := cfg.MinDataPoints
	if minPoints <= 0 {
		minPoints = DefaultMinDataPoints
	}
	return &engine{minPoints: minPoints}
}

func (e *engine) FitForecast(ctx context.Context, series []float64, horizon int, confidence float64) (*Fit, []Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(series) < e.minPoints {
		return nil, nil, &domain.InsufficientDataError{Found: len(series), Required: e.minPoints}
	}
	if horizon < 1 {
		return nil, nil, fmt.Errorf("horizon must be >= 1, got %d", horizon)
	}

	fit := e.fit(series)

	points, err := e.forecast(series, fit, horizon, confidence)
	if err != nil {
		return nil, nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Float64("ar", fit.AR).
		Float64("seasonal_ar", fit.SeasonalAR).
		Float64("residual_std", fit.ResidualStd).
		Int("horizon", horizon).
		Msg("seasonal model fitted")

	return fit, points, nil
}

// fit estimates the model best-effort: Yule-Walker for the AR terms,
// damped residual autocorrelation for the MA terms. Stationarity is not
// enforced; degenerate algebra degrades to zero coefficients instead of
// aborting the fit.
func (e *engine) fit(series []float64) *Fit {
	diffed := doubleDifference(series)
	mu := mean(diffed)
	centered := make([]float64, len(diffed))
	for i, v := range diffed {
		centered[i] = v - mu
	}

	ar := clampCoeff(autocorr(centered, 1))
	seasonalAR := clampCoeff(autocorr(centered, SeasonalPeriod))

	arResiduals := residualsAR(centered, ar, seasonalAR)

	// half-damped to keep the invertibility margin the estimator lacks
	ma := clampCoeff(autocorr(arResiduals, 1) * 0.5)
	seasonalMA := clampCoeff(autocorr(arResiduals, SeasonalPeriod) * 0.5)

	residuals := residualsFull(centered, ar, seasonalAR, ma, seasonalMA)

	offset := len(series) - len(residuals)

	return &Fit{
		AR:          ar,
		MA:          ma,
		SeasonalAR:  seasonalAR,
		SeasonalMA:  seasonalMA,
		Mean:        mu,
		Residuals:   residuals,
		Offset:      offset,
		ResidualStd: stddev(residuals),
	}
}

// forecast iterates the recursion in differenced space, integrates back to
// the original scale, and attaches the confidence band. The band half-width
// grows with sqrt(h) so uncertainty widens with horizon distance.
func (e *engine) forecast(series []float64, fit *Fit, horizon int, confidence float64) ([]Point, error) {
	s := SeasonalPeriod
	diffed := doubleDifference(series)

	centered := make([]float64, len(diffed), len(diffed)+horizon)
	for i, v := range diffed {
		centered[i] = v - fit.Mean
	}
	errs := make([]float64, len(fit.Residuals), len(fit.Residuals)+horizon)
	copy(errs, fit.Residuals)

	extended := make([]float64, len(series), len(series)+horizon)
	copy(extended, series)

	z := normalQuantile(1 - (1-confidence)/2)

	points := make([]Point, 0, horizon)
	for h := 1; h <= horizon; h++ {
		var next float64
		next += fit.AR * lag(centered, 1)
		next += fit.SeasonalAR * lag(centered, s)
		next -= fit.AR * fit.SeasonalAR * lag(centered, s+1)
		next += fit.MA * lag(errs, 1)
		next += fit.SeasonalMA * lag(errs, s)

		centered = append(centered, next)
		errs = append(errs, 0)

		// invert (1-B)(1-B^12) against the extended series
		n := len(extended)
		value := extended[n-1] + extended[n-s] - extended[n-s-1] + next + fit.Mean
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, &domain.ModelFitError{Err: fmt.Errorf("forecast diverged at step %d", h)}
		}
		extended = append(extended, value)

		half := z * fit.ResidualStd * math.Sqrt(float64(h))
		points = append(points, Point{
			Value: value,
			Lower: value - half,
			Upper: value + half,
		})
	}

	return points, nil
}

// doubleDifference applies first and seasonal differencing:
// w_t = y_t - y_{t-1} - y_{t-12} + y_{t-13}.
func doubleDifference(series []float64) []float64 {
	s := SeasonalPeriod
	if len(series) <= s+1 {
		return nil
	}
	out := make([]float64, len(series)-s-1)
	for i := range out {
		t := i + s + 1
		out[i] = series[t] - series[t-1] - series[t-s] + series[t-s-1]
	}
	return out
}

// residualsAR computes one-step errors of the pure AR part.
func residualsAR(centered []float64, ar, seasonalAR float64) []float64 {
	s := SeasonalPeriod
	out := make([]float64, len(centered))
	for t := range centered {
		var pred float64
		if t >= 1 {
			pred += ar * centered[t-1]
		}
		if t >= s {
			pred += seasonalAR * centered[t-s]
		}
		if t >= s+1 {
			pred -= ar * seasonalAR * centered[t-s-1]
		}
		out[t] = centered[t] - pred
	}
	return out
}

// residualsFull recomputes errors with the MA terms folded in.
func residualsFull(centered []float64, ar, seasonalAR, ma, seasonalMA float64) []float64 {
	s := SeasonalPeriod
	out := make([]float64, len(centered))
	for t := range centered {
		var pred float64
		if t >= 1 {
			pred += ar*centered[t-1] + ma*out[t-1]
		}
		if t >= s {
			pred += seasonalAR*centered[t-s] + seasonalMA*out[t-s]
		}
		if t >= s+1 {
			pred -= ar * seasonalAR * centered[t-s-1]
		}
		out[t] = centered[t] - pred
	}
	return out
}

func autocorr(values []float64, k int) float64 {
	n := len(values)
	if k <= 0 || n <= k {
		return 0
	}

	mu := mean(values)
	variance := 0.0
	for _, v := range values {
		d := v - mu
		variance += d * d
	}
	if variance == 0 {
		return 0
	}

	cov := 0.0
	for t := k; t < n; t++ {
		cov += (values[t] - mu) * (values[t-k] - mu)
	}
	return cov / variance
}

func clampCoeff(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Max(-maxCoeff, math.Min(maxCoeff, c))
}

func lag(values []float64, k int) float64 {
	if len(values) < k {
		return 0
	}
	return values[len(values)-k]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

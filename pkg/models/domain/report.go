package domain

import "time"

// TimeSeriesPoint is one month of the normalized revenue series.
// Periods are first-of-month timestamps, strictly increasing and gapless.
type TimeSeriesPoint struct {
	Period time.Time
	Value  float64
}

// MonthlyAggregate is one month of summed metrics used for historical charting.
type MonthlyAggregate struct {
	Period      time.Time
	Revenue     float64
	SalesAmount float64
}

// ForecastPoint is a point estimate with its confidence bounds.
// Lower <= Value <= Upper holds for every emitted point.
type ForecastPoint struct {
	Period time.Time
	Value  float64
	Lower  float64
	Upper  float64
}

// SeasonalityPoint is the average revenue for one (year, calendar month) cell.
type SeasonalityPoint struct {
	Year    int
	Month   time.Month
	Revenue float64
}

// Metrics summarizes forecast accuracy for one report.
// MAPE is nil when no non-zero actual/residual pairs exist.
type Metrics struct {
	DataPoints         int
	ForecastPeriods    int
	ConfidenceInterval float64
	MAPE               *float64
	LatestActual       float64
	LatestForecast     float64
}

// ChartPoint is one record of a chart dataset. Rendering is delegated to
// external consumers; this core only emits plain records.
type ChartPoint struct {
	Date   time.Time
	Series string
	Value  float64
	Lower  float64
	Upper  float64
	HasCI  bool
}

// SeasonalChartPoint is one record of the seasonal-by-year dataset.
type SeasonalChartPoint struct {
	Label string
	Year  int
	Value float64
}

// ChartData groups the three report chart datasets.
type ChartData struct {
	Historical []ChartPoint
	Forecast   []ChartPoint
	Seasonal   []SeasonalChartPoint
}

// ReportPayload is the complete forecast report. It is assembled once per
// request and never mutated after being returned.
type ReportPayload struct {
	Summary     string
	Filters     map[Dimension]string
	Metrics     Metrics
	Historical  []MonthlyAggregate
	Forecast    []ForecastPoint
	Seasonality []SeasonalityPoint
	Table       []ForecastPoint
	Charts      ChartData
	Narrative   string
}

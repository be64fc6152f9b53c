package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/services/forecast"
	"github.com/de-tools/sales-atlas/pkg/services/narrative"
	"github.com/de-tools/sales-atlas/pkg/services/series"
)

// Assembler merges series, forecast and metrics into the final payload.
type Assembler interface {
	Assemble(ctx context.Context, in AssembleInput) *domain.ReportPayload
}

// AssembleInput is everything the assembler needs. The caller guarantees
// Artifacts and Points are non-empty and internally consistent.
type AssembleInput struct {
	Selection domain.FilterSelection
	Artifacts *series.Artifacts
	Points    []forecast.Point
	Metrics   domain.Metrics
}

type assembler struct {
	generator narrative.Generator
}

// NewAssembler builds an assembler. A nil generator disables narratives.
func NewAssembler(generator narrative.Generator) Assembler {
	return &assembler{generator: generator}
}

func (a *assembler) Assemble(ctx context.Context, in AssembleInput) *domain.ReportPayload {
	filters := filtersUsed(in.Selection)
	forecastPoints := datedForecast(in.Artifacts.LastPeriod(), in.Points)
	seasonality := seasonalityBreakdown(in.Artifacts.Observations)
	summary := buildSummary(filters, in.Metrics)

	payload := &domain.ReportPayload{
		Summary:     summary,
		Filters:     filters,
		Metrics:     roundMetrics(in.Metrics),
		Historical:  roundMonthly(in.Artifacts.Monthly),
		Forecast:    forecastPoints,
		Seasonality: seasonality,
		Table:       forecastPoints,
		Charts: domain.ChartData{
			Historical: historicalChart(in.Artifacts.Monthly),
			Forecast:   forecastChart(in.Artifacts.Monthly, forecastPoints),
			Seasonal:   seasonalChart(seasonality),
		},
	}

	payload.Narrative = a.explain(ctx, summary, filters, payload.Metrics, forecastPoints)
	return payload
}

// explain is best-effort. A failed or absent generator never fails the report.
func (a *assembler) explain(
	ctx context.Context,
	summary string,
	filters map[domain.Dimension]string,
	metrics domain.Metrics,
	points []domain.ForecastPoint,
) string {
	if a.generator == nil {
		return ""
	}

	prompt := narrative.BuildPrompt(summary, filters, metrics, points)
	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("narrative generation failed")
		return ""
	}
	return text
}

func filtersUsed(sel domain.FilterSelection) map[domain.Dimension]string {
	used := make(map[domain.Dimension]string, len(domain.DimensionChain))
	for _, dim := range domain.DimensionChain {
		used[dim] = sel.Get(dim).OrAll()
	}
	return used
}

// datedForecast stamps each horizon step with its calendar month, starting
// the month after the last historical period.
func datedForecast(lastPeriod time.Time, points []forecast.Point) []domain.ForecastPoint {
	out := make([]domain.ForecastPoint, len(points))
	for i, p := range points {
		out[i] = domain.ForecastPoint{
			Period: lastPeriod.AddDate(0, i+1, 0),
			Value:  round2(p.Value),
			Lower:  round2(p.Lower),
			Upper:  round2(p.Upper),
		}
	}
	return out
}

// seasonalityBreakdown averages revenue per (year, month) cell over the raw
// observations, sorted by year then month.
func seasonalityBreakdown(records []store.SalesRecord) []domain.SeasonalityPoint {
	type cell struct {
		sum   float64
		count int
	}
	type key struct {
		year  int
		month time.Month
	}

	cells := make(map[key]*cell)
	for _, rec := range records {
		k := key{year: rec.DueDate.Year(), month: rec.DueDate.Month()}
		c, ok := cells[k]
		if !ok {
			c = &cell{}
			cells[k] = c
		}
		c.sum += rec.RevenueEUR
		c.count++
	}

	points := make([]domain.SeasonalityPoint, 0, len(cells))
	for k, c := range cells {
		points = append(points, domain.SeasonalityPoint{
			Year:    k.year,
			Month:   k.month,
			Revenue: round2(c.sum / float64(c.count)),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Month < points[j].Month
	})
	return points
}

func buildSummary(filters map[domain.Dimension]string, m domain.Metrics) string {
	var b strings.Builder
	b.WriteString("Forecast Analysis Summary\n")
	b.WriteString("-------------------------\n")
	b.WriteString("Applied Filters:\n")
	for _, dim := range domain.DimensionChain {
		fmt.Fprintf(&b, "- %s: %s\n", dim.DisplayName(), filters[dim])
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Data Points Analyzed: %d\n", m.DataPoints)
	fmt.Fprintf(&b, "Forecast Periods: %d\n", m.ForecastPeriods)
	fmt.Fprintf(&b, "Confidence Interval: %.0f%%\n", m.ConfidenceInterval*100)
	if m.MAPE != nil {
		fmt.Fprintf(&b, "MAPE: %.2f%%\n", *m.MAPE)
	} else {
		b.WriteString("MAPE: Not enough data to calculate\n")
	}
	fmt.Fprintf(&b, "Latest Historical Value: %.2f EUR\n", m.LatestActual)
	fmt.Fprintf(&b, "Latest Forecast Value: %.2f EUR", m.LatestForecast)
	return b.String()
}

func historicalChart(monthly []domain.MonthlyAggregate) []domain.ChartPoint {
	points := make([]domain.ChartPoint, 0, len(monthly)*2)
	for _, agg := range monthly {
		points = append(points,
			domain.ChartPoint{Date: agg.Period, Series: "Revenue", Value: round2(agg.Revenue)},
			domain.ChartPoint{Date: agg.Period, Series: "Sales Amount", Value: round2(agg.SalesAmount)},
		)
	}
	return points
}

// forecastChart concatenates the historical revenue line and the forecast
// line. Only forecast records carry a confidence band.
func forecastChart(monthly []domain.MonthlyAggregate, points []domain.ForecastPoint) []domain.ChartPoint {
	chart := make([]domain.ChartPoint, 0, len(monthly)+len(points))
	for _, agg := range monthly {
		chart = append(chart, domain.ChartPoint{
			Date:   agg.Period,
			Series: "Historical",
			Value:  round2(agg.Revenue),
		})
	}
	for _, p := range points {
		chart = append(chart, domain.ChartPoint{
			Date:   p.Period,
			Series: "Forecast",
			Value:  p.Value,
			Lower:  p.Lower,
			Upper:  p.Upper,
			HasCI:  true,
		})
	}
	return chart
}

func seasonalChart(points []domain.SeasonalityPoint) []domain.SeasonalChartPoint {
	chart := make([]domain.SeasonalChartPoint, len(points))
	for i, p := range points {
		chart[i] = domain.SeasonalChartPoint{
			Label: p.Month.String()[:3],
			Year:  p.Year,
			Value: p.Revenue,
		}
	}
	return chart
}

func roundMonthly(monthly []domain.MonthlyAggregate) []domain.MonthlyAggregate {
	out := make([]domain.MonthlyAggregate, len(monthly))
	for i, agg := range monthly {
		out[i] = domain.MonthlyAggregate{
			Period:      agg.Period,
			Revenue:     round2(agg.Revenue),
			SalesAmount: round2(agg.SalesAmount),
		}
	}
	return out
}

func roundMetrics(m domain.Metrics) domain.Metrics {
	m.LatestActual = round2(m.LatestActual)
	m.LatestForecast = round2(m.LatestForecast)
	if m.MAPE != nil {
		rounded := round2(*m.MAPE)
		m.MAPE = &rounded
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

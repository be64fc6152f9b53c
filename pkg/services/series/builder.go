package series

import (
	"context"
	"sort"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/sales"
	"github.com/rs/zerolog"
)

const DefaultMinDataPoints = 24

// Artifacts carries everything extracted for one report request: the
// calendar-regular revenue series the model fits on, the parallel monthly
// aggregates for charting, and the raw rows for the seasonality breakdown.
type Artifacts struct {
	Series       []domain.TimeSeriesPoint
	Monthly      []domain.MonthlyAggregate
	Observations []store.SalesRecord
}

// Values returns the revenue series as a bare float slice for fitting.
func (a *Artifacts) Values() []float64 {
	values := make([]float64, len(a.Series))
	for i, p := range a.Series {
		values[i] = p.Value
	}
	return values
}

// LastPeriod returns the final month of the normalized series.
func (a *Artifacts) LastPeriod() time.Time {
	return a.Series[len(a.Series)-1].Period
}

// Builder extracts filtered observations and normalizes them to a gapless
// monthly revenue series.
type Builder interface {
	Build(ctx context.Context, sel domain.FilterSelection) (*Artifacts, error)
}

type Config struct {
	MinDataPoints int
}

type builder struct {
	store     sales.Store
	minPoints int
}

func NewBuilder(store sales.Store, cfg Config) Builder {
	minPoints := cfg.MinDataPoints
	if minPoints <= 0 {
		minPoints = DefaultMinDataPoints
	}
	return &builder{store: store, minPoints: minPoints}
}

func (b *builder) Build(ctx context.Context, sel domain.FilterSelection) (*Artifacts, error) {
	logger := zerolog.Ctx(ctx)

	records, err := b.store.QueryObservations(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(records) < b.minPoints {
		return nil, &domain.InsufficientDataError{Found: len(records), Required: b.minPoints}
	}

	monthly := aggregateByMonth(records)
	series := fillGaps(monthly)
	if len(series) < b.minPoints {
		return nil, &domain.InsufficientDataError{Found: len(series), Required: b.minPoints}
	}

	logger.Debug().
		Int("observations", len(records)).
		Int("months", len(series)).
		Msg("series normalized")

	return &Artifacts{
		Series:       series,
		Monthly:      monthly,
		Observations: records,
	}, nil
}

// aggregateByMonth sums revenue and sales amount per calendar month,
// sorted ascending. Only months with at least one row appear here.
func aggregateByMonth(records []store.SalesRecord) []domain.MonthlyAggregate {
	byMonth := make(map[time.Time]*domain.MonthlyAggregate)
	for _, rec := range records {
		period := monthOf(rec.DueDate)
		agg, ok := byMonth[period]
		if !ok {
			agg = &domain.MonthlyAggregate{Period: period}
			byMonth[period] = agg
		}
		agg.Revenue += rec.RevenueEUR
		agg.SalesAmount += rec.SalesAmount
	}

	monthly := make([]domain.MonthlyAggregate, 0, len(byMonth))
	for _, agg := range byMonth {
		monthly = append(monthly, *agg)
	}
	sort.Slice(monthly, func(i, j int) bool {
		return monthly[i].Period.Before(monthly[j].Period)
	})
	return monthly
}

// fillGaps reindexes the aggregated months onto a full monthly calendar from
// the first to the last observed month, inserting zeros where no rows matched.
// Downstream models require an unbroken cadence.
func fillGaps(monthly []domain.MonthlyAggregate) []domain.TimeSeriesPoint {
	if len(monthly) == 0 {
		return nil
	}

	byPeriod := make(map[time.Time]float64, len(monthly))
	for _, agg := range monthly {
		byPeriod[agg.Period] = agg.Revenue
	}

	first := monthly[0].Period
	last := monthly[len(monthly)-1].Period

	var series []domain.TimeSeriesPoint
	for period := first; !period.After(last); period = period.AddDate(0, 1, 0) {
		series = append(series, domain.TimeSeriesPoint{
			Period: period,
			Value:  byPeriod[period],
		})
	}
	return series
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	duckdbsales "github.com/de-tools/sales-atlas/pkg/store/duckdb/sales"
)

const batchSize = 500

const dateLayout = "2006-01-02"

// Loader reads sales facts from CSV and writes them to the local store in
// batches. With a database handle present, the whole load runs in one
// transaction so a malformed row never leaves a partial import behind.
type Loader struct {
	db    *sql.DB
	store duckdbsales.Store
}

func NewLoader(db *sql.DB, store duckdbsales.Store) *Loader {
	return &Loader{db: db, store: store}
}

// LoadCSV ingests one CSV stream and returns the number of records loaded.
// The header row must name the fact table columns; order is free.
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader) (int, error) {
	logger := zerolog.Ctx(ctx)

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns, err := mapColumns(header)
	if err != nil {
		return 0, err
	}

	var tx *sql.Tx
	if l.db != nil {
		tx, err = l.db.BeginTx(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() {
			if tx != nil {
				_ = tx.Rollback()
			}
		}()
		ctx = duckdb.WithTransaction(ctx, tx)
	}

	total := 0
	batch := make([]store.SalesRecord, 0, batchSize)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		rec, err := parseRecord(columns, row)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}

		batch = append(batch, rec)
		if len(batch) == batchSize {
			if err := l.store.Add(ctx, batch); err != nil {
				return 0, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}

	if err := l.store.Add(ctx, batch); err != nil {
		return 0, err
	}
	total += len(batch)

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit load: %w", err)
		}
		tx = nil
	}

	logger.Info().Int("records", total).Msg("csv load complete")
	return total, nil
}

type columnIndex struct {
	dueDate         int
	revenue         int
	salesAmount     int
	organization    int
	country         int
	region          int
	state           int
	city            int
	productLine     int
	productCategory int
}

func mapColumns(header []string) (*columnIndex, error) {
	idx := &columnIndex{
		dueDate: -1, revenue: -1, salesAmount: -1,
		organization: -1, country: -1, region: -1, state: -1, city: -1,
		productLine: -1, productCategory: -1,
	}
	for i, name := range header {
		switch name {
		case "due_date":
			idx.dueDate = i
		case "revenue_eur":
			idx.revenue = i
		case "sales_amount":
			idx.salesAmount = i
		case "sales_org":
			idx.organization = i
		case "sales_country":
			idx.country = i
		case "sales_region":
			idx.region = i
		case "sales_state":
			idx.state = i
		case "sales_city":
			idx.city = i
		case "product_line":
			idx.productLine = i
		case "product_category":
			idx.productCategory = i
		}
	}
	if idx.dueDate < 0 || idx.revenue < 0 || idx.salesAmount < 0 {
		return nil, fmt.Errorf("csv header must include due_date, revenue_eur and sales_amount")
	}
	return idx, nil
}

func parseRecord(idx *columnIndex, row []string) (store.SalesRecord, error) {
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	dueDate, err := time.Parse(dateLayout, get(idx.dueDate))
	if err != nil {
		return store.SalesRecord{}, fmt.Errorf("invalid due_date %q", get(idx.dueDate))
	}
	revenue, err := strconv.ParseFloat(get(idx.revenue), 64)
	if err != nil {
		return store.SalesRecord{}, fmt.Errorf("invalid revenue_eur %q", get(idx.revenue))
	}
	salesAmount, err := strconv.ParseFloat(get(idx.salesAmount), 64)
	if err != nil {
		return store.SalesRecord{}, fmt.Errorf("invalid sales_amount %q", get(idx.salesAmount))
	}

	return store.SalesRecord{
		DueDate:         dueDate,
		RevenueEUR:      revenue,
		SalesAmount:     salesAmount,
		Organization:    get(idx.organization),
		Country:         get(idx.country),
		Region:          get(idx.region),
		State:           get(idx.state),
		City:            get(idx.city),
		ProductLine:     get(idx.productLine),
		ProductCategory: get(idx.productCategory),
	}, nil
}

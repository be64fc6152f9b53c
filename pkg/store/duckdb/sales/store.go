package sales

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
)

// Store ingests sales facts into the local DuckDB table. Reads go through
// the shared sales store; this package only covers the load path.
type Store interface {
	Add(ctx context.Context, records []store.SalesRecord) error
}

type ingestStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &ingestStore{db: db}, nil
}

func (s *ingestStore) Add(ctx context.Context, records []store.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT INTO monthly_sales (
			due_date, revenue_eur, sales_amount,
			sales_org, sales_country, sales_region,
			sales_state, sales_city, product_line, product_category
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err = stmt.ExecContext(ctx,
			rec.DueDate,
			rec.RevenueEUR,
			rec.SalesAmount,
			nullable(rec.Organization),
			nullable(rec.Country),
			nullable(rec.Region),
			nullable(rec.State),
			nullable(rec.City),
			nullable(rec.ProductLine),
			nullable(rec.ProductCategory),
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

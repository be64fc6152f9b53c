package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

// SalesTableSchema is the local fact table for demo and offline operation.
// Column names match the warehouse projection used by the sales store.
const SalesTableSchema = `
	CREATE TABLE IF NOT EXISTS monthly_sales (
		due_date DATE NOT NULL,
		revenue_eur DOUBLE NOT NULL,
		sales_amount DOUBLE NOT NULL,
		sales_org VARCHAR,
		sales_country VARCHAR,
		sales_region VARCHAR,
		sales_state VARCHAR,
		sales_city VARCHAR,
		product_line VARCHAR,
		product_category VARCHAR
	);
`

var bootQueries = []string{
	SalesTableSchema,
}

type Settings struct {
	DbPath string
}

// NewDB opens a DuckDB database and ensures the sales schema exists.
func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}

type txKey struct{}

// WithTransaction attaches a transaction for ingest batches.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

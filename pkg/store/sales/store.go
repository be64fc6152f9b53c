package sales

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

const factTable = "monthly_sales"

// Store executes filtered projections against the sales fact table.
// Connections come from the pool per call and are released with the rows;
// nothing is held across pipeline stages.
type Store interface {
	QueryObservations(ctx context.Context, sel domain.FilterSelection) ([]store.SalesRecord, error)
	DistinctValues(ctx context.Context, dim domain.Dimension, upstream domain.FilterSelection, minCount int) ([]string, error)
}

type salesStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &salesStore{db: db}, nil
}

func (s *salesStore) QueryObservations(ctx context.Context, sel domain.FilterSelection) ([]store.SalesRecord, error) {
	logger := zerolog.Ctx(ctx)

	clause, args := buildFilterClause(sel)
	query := fmt.Sprintf(`
		SELECT
			due_date,
			revenue_eur,
			sales_amount,
			sales_org,
			sales_country,
			sales_region,
			sales_state,
			sales_city,
			product_line,
			product_category
		FROM %s
		WHERE 1=1%s
		ORDER BY due_date`, factTable, clause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.DataAccessError{Op: "query observations", Err: err}
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close observation rows")
		}
	}()

	records := make([]store.SalesRecord, 0)
	for rows.Next() {
		var (
			rec               store.SalesRecord
			org, country      sql.NullString
			region, state     sql.NullString
			city, line, categ sql.NullString
		)
		if err := rows.Scan(
			&rec.DueDate,
			&rec.RevenueEUR,
			&rec.SalesAmount,
			&org, &country, &region, &state, &city, &line, &categ,
		); err != nil {
			return nil, &domain.DataAccessError{Op: "scan observation row", Err: err}
		}
		rec.Organization = org.String
		rec.Country = country.String
		rec.Region = region.String
		rec.State = state.String
		rec.City = city.String
		rec.ProductLine = line.String
		rec.ProductCategory = categ.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.DataAccessError{Op: "iterate observation rows", Err: err}
	}

	return records, nil
}

func (s *salesStore) DistinctValues(
	ctx context.Context,
	dim domain.Dimension,
	upstream domain.FilterSelection,
	minCount int,
) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	column := string(dim)
	clause, args := buildFilterClause(upstream)

	var query string
	if minCount > 0 {
		query = fmt.Sprintf(`
			SELECT %[1]s AS value
			FROM %[2]s
			WHERE 1=1%[3]s AND %[1]s IS NOT NULL
			GROUP BY %[1]s
			HAVING COUNT(*) >= ?
			ORDER BY %[1]s`, column, factTable, clause)
		args = append(args, minCount)
	} else {
		query = fmt.Sprintf(`
			SELECT DISTINCT %[1]s AS value
			FROM %[2]s
			WHERE 1=1%[3]s AND %[1]s IS NOT NULL
			ORDER BY %[1]s`, column, factTable, clause)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.DataAccessError{Op: fmt.Sprintf("distinct %s", column), Err: err}
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Str("dimension", column).Msg("failed to close distinct rows")
		}
	}()

	values := make([]string, 0)
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, &domain.DataAccessError{Op: fmt.Sprintf("scan distinct %s", column), Err: err}
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.DataAccessError{Op: fmt.Sprintf("iterate distinct %s", column), Err: err}
	}

	return values, nil
}

// buildFilterClause renders the selection as AND-ed equality predicates in
// dimension-chain order, so identical selections produce identical SQL.
func buildFilterClause(sel domain.FilterSelection) (string, []any) {
	var b strings.Builder
	var args []any
	for _, dim := range domain.DimensionChain {
		v := sel.Get(dim)
		if !v.IsSet() {
			continue
		}
		fmt.Fprintf(&b, " AND %s = ?", string(dim))
		args = append(args, v.Value())
	}
	return b.String(), args
}

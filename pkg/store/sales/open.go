package sales

import (
	"database/sql"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
	_ "github.com/snowflakedb/gosnowflake"

	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
)

// OpenWarehouse opens a connection pool for the given profile. Snowflake and
// Databricks use their registered database/sql drivers; DuckDB goes through
// the local connector so the schema boot queries run.
func OpenWarehouse(profile *config.Profile) (*sql.DB, error) {
	switch profile.Driver {
	case config.DriverDuckDB:
		return duckdb.NewDB(duckdb.Settings{DbPath: profile.DSN})
	case config.DriverSnowflake, config.DriverDatabricks:
		db, err := sql.Open(profile.Driver, profile.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s connection: %w", profile.Driver, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", profile.Driver)
	}
}

package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/sales-atlas/pkg/services/ingest"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	duckdbsales "github.com/de-tools/sales-atlas/pkg/store/duckdb/sales"
)

type LoadCmd struct {
	dbPath string
	file   string
}

func NewLoadCmd() *cobra.Command {
	lc := &LoadCmd{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load sales history from CSV into the local database",
		RunE:  lc.run,
	}

	cmd.Flags().StringVar(&lc.dbPath, "db", "sales-atlas.db", "Path to the local DuckDB database")
	cmd.Flags().StringVar(&lc.file, "file", "", "CSV file with monthly sales facts")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (lc *LoadCmd) run(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: lc.dbPath})
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}
	defer db.Close()

	ingestStore, err := duckdbsales.NewStore(db)
	if err != nil {
		return err
	}

	f, err := os.Open(lc.file)
	if err != nil {
		return fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	count, err := ingest.NewLoader(db, ingestStore).LoadCSV(ctx, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d records into %s\n", count, lc.dbPath)
	return nil
}

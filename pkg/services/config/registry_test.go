package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warehouses.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRegistry(t *testing.T) {
	path := writeConfig(t, `
[prod]
driver = snowflake
dsn = user:pass@account/db/schema?warehouse=wh

[lakehouse]
driver = databricks
dsn = token:dapi123@host:443/sql/1.0/warehouses/abc

[local]
driver = duckdb
dsn =

[broken]
driver = sqlite
dsn = file.db
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	t.Run("lists profiles with keys", func(t *testing.T) {
		profiles, err := registry.GetProfiles(context.Background())

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"prod", "lakehouse", "local", "broken"}, profiles)
	})

	t.Run("resolves a snowflake profile", func(t *testing.T) {
		profile, err := registry.GetProfile(context.Background(), "prod")

		require.NoError(t, err)
		assert.Equal(t, DriverSnowflake, profile.Driver)
		assert.Equal(t, "user:pass@account/db/schema?warehouse=wh", profile.DSN)
	})

	t.Run("duckdb profile may omit the dsn", func(t *testing.T) {
		profile, err := registry.GetProfile(context.Background(), "local")

		require.NoError(t, err)
		assert.Equal(t, DriverDuckDB, profile.Driver)
		assert.Empty(t, profile.DSN)
	})

	t.Run("unknown profile errors", func(t *testing.T) {
		_, err := registry.GetProfile(context.Background(), "missing")

		assert.ErrorContains(t, err, "not found")
	})

	t.Run("unsupported driver errors", func(t *testing.T) {
		_, err := registry.GetProfile(context.Background(), "broken")

		assert.ErrorContains(t, err, "unsupported driver")
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := NewRegistry(filepath.Join(t.TempDir(), "absent.ini"))

		assert.Error(t, err)
	})
}

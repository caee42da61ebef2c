package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	require.Equal(t, 1, one)
}

func TestOpenSQLiteFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "accounts.sqlite")

	db, err := Open(Config{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	require.NoError(t, Close(db))
	require.FileExists(t, path)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.EqualError(t, err, `unsupported database driver "oracle"`)
}

func TestPostgresDSNRequiresConnectionString(t *testing.T) {
	_, err := postgresDSN(Config{DSN: "   "})
	require.Error(t, err)

	dsn, err := postgresDSN(Config{DSN: " postgres://u:p@db:5432/accounts?sslmode=require "})
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@db:5432/accounts?sslmode=require", dsn)
}

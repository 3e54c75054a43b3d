// Package dbtest opens a migrated SQLite database for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/fitlg/fitlg/internal/db"
)

// New returns a fresh database file under t.TempDir with every migration applied.
// The connection is closed when the test finishes.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fitlg_test.db")
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	database, err := db.Init("sqlite", dsn)
	require.NoError(t, err)

	err = db.RunMigrations(context.Background(), database.DB, "sqlite")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}

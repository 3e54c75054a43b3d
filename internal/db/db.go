// Package db opens the sqlx handle for SQLite (development, tests) or
// Postgres (production).
package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Init connects and verifies the database. For a file backed SQLite database
// the parent directory is created first.
func Init(driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite {
		if err := ensureDataDir(dsn); err != nil {
			return nil, err
		}
	}

	database, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	configurePool(database, driver)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	slog.Info("database connected", "driver", driver)
	return database, nil
}

func ensureDataDir(dsn string) error {
	if strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path, _, _ := strings.Cut(dsn, "?")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

// configurePool keeps SQLite to a single writer connection so busy_timeout
// serializes writes instead of failing with SQLITE_BUSY.
func configurePool(database *sqlx.DB, driver string) {
	if driver == DriverSQLite {
		database.SetMaxOpenConns(1)
		return
	}
	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(5 * time.Minute)
}

// Ping checks the connection with a short deadline, used by the health endpoint.
func Ping(ctx context.Context, database *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return database.PingContext(ctx)
}

func Close(database *sqlx.DB) error {
	if database == nil {
		return nil
	}
	return database.Close()
}

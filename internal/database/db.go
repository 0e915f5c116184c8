package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the underlying connection pool
type DB struct {
	*sql.DB
}

// New connects to postgres and ensures the schema exists
func New(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapped := &DB{DB: db}
	if err := wrapped.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return wrapped, nil
}

// HealthCheck verifies the database connection is alive
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// StorageUsage returns the database size in bytes. Quota accounting is not
// available from postgres, so quota is always zero; callers treat failures
// as zeros rather than errors.
func (db *DB) StorageUsage(ctx context.Context) (used int64, quota int64, err error) {
	err = db.QueryRowContext(ctx, `SELECT pg_database_size(current_database())`).Scan(&used)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read database size: %w", err)
	}
	return used, 0, nil
}

func (db *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS weekends (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weekends_created_at ON weekends (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_weekends_updated_at ON weekends (updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_weekends_title ON weekends (title)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id UUID PRIMARY KEY,
			category_id UUID NOT NULL,
			duration_minutes INTEGER NOT NULL,
			energy_level TEXT NOT NULL,
			weather_dependent BOOLEAN NOT NULL,
			data JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_category_id ON activities (category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_duration ON activities (duration_minutes)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_energy_level ON activities (energy_level)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_weather ON activities (weather_dependent)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			data JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			data JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pending_changes (
			id BIGSERIAL PRIMARY KEY,
			type TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pending_changes_created_at ON pending_changes (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_pending_changes_type ON pending_changes (type)`,
		`CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
)

// MetadataKeyLastSyncTime records when the queue last flushed successfully
const MetadataKeyLastSyncTime = "last_sync_time"

// MetadataRepository handles the small key/value metadata table
type MetadataRepository struct {
	db *DB
}

// NewMetadataRepository creates a new metadata repository
func NewMetadataRepository(db *DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// Set upserts a metadata value
func (r *MetadataRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO metadata (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata %s: %w", key, err)
	}
	return nil
}

// Get retrieves a metadata value; ok is false when the key is unset
func (r *MetadataRepository) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get metadata %s: %w", key, err)
	}
	return value, true, nil
}

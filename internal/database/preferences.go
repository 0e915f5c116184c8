package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/weekendly/planner/internal/models"
)

// preferencesKey is the fixed singleton row key
const preferencesKey = "preferences"

// PreferencesRepository handles the singleton preferences row
type PreferencesRepository struct {
	db *DB
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Set upserts the preferences row
func (r *PreferencesRepository) Set(ctx context.Context, prefs *models.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	query := `
		INSERT INTO preferences (key, data)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data
	`
	if _, err := r.db.ExecContext(ctx, query, preferencesKey, data); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Get retrieves the preferences row, returning nil without error when it
// has never been written
func (r *PreferencesRepository) Get(ctx context.Context) (*models.Preferences, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM preferences WHERE key = $1`, preferencesKey).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs := &models.Preferences{}
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return prefs, nil
}

// DeleteAll clears the preferences table. Used by destructive import.
func (r *PreferencesRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM preferences`); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	return nil
}

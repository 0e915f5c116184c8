package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weekendly/planner/internal/models"
)

// ActivityRepository handles catalog activity database operations
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// SaveAll upserts a list of catalog activities in a single transaction
func (r *ActivityRepository) SaveAll(ctx context.Context, activities []*models.Activity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO activities (id, category_id, duration_minutes, energy_level, weather_dependent, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET category_id = EXCLUDED.category_id,
		    duration_minutes = EXCLUDED.duration_minutes,
		    energy_level = EXCLUDED.energy_level,
		    weather_dependent = EXCLUDED.weather_dependent,
		    data = EXCLUDED.data
	`

	for _, activity := range activities {
		data, err := json.Marshal(activity)
		if err != nil {
			return fmt.Errorf("failed to marshal activity %s: %w", activity.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query,
			activity.ID,
			activity.CategoryID,
			activity.DurationMinutes,
			activity.EnergyLevel,
			activity.WeatherDependent,
			data,
		); err != nil {
			return fmt.Errorf("failed to save activity %s: %w", activity.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activities: %w", err)
	}
	return nil
}

// List retrieves catalog activities with pagination, ordered by title
func (r *ActivityRepository) List(ctx context.Context, limit, offset int) ([]*models.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM activities ORDER BY data->>'title' LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activity := &models.Activity{}
		if err := json.Unmarshal(data, activity); err != nil {
			return nil, fmt.Errorf("failed to unmarshal activity: %w", err)
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return activities, nil
}

// Count returns the number of stored activities
func (r *ActivityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// DeleteAll clears the activities table. Used by destructive import.
func (r *ActivityRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activities`); err != nil {
		return fmt.Errorf("failed to clear activities: %w", err)
	}
	return nil
}

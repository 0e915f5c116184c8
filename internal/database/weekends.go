package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/weekendly/planner/internal/models"
)

// WeekendRepository handles weekend schedule database operations
type WeekendRepository struct {
	db *DB
}

// NewWeekendRepository creates a new weekend repository
func NewWeekendRepository(db *DB) *WeekendRepository {
	return &WeekendRepository{db: db}
}

// Save upserts a weekend schedule. The full schedule, including both day
// collections, is stored as a JSONB document; the indexed columns are
// duplicated for querying.
func (r *WeekendRepository) Save(ctx context.Context, weekend *models.WeekendSchedule) error {
	data, err := json.Marshal(weekend)
	if err != nil {
		return fmt.Errorf("failed to marshal weekend: %w", err)
	}

	query := `
		INSERT INTO weekends (id, title, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, weekend.ID, weekend.Title, data, weekend.CreatedAt, weekend.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save weekend: %w", err)
	}
	return nil
}

// BulkSave upserts a list of weekends in a single transaction
func (r *WeekendRepository) BulkSave(ctx context.Context, weekends []*models.WeekendSchedule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO weekends (id, title, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	for _, weekend := range weekends {
		data, err := json.Marshal(weekend)
		if err != nil {
			return fmt.Errorf("failed to marshal weekend %s: %w", weekend.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, weekend.ID, weekend.Title, data, weekend.CreatedAt, weekend.UpdatedAt); err != nil {
			return fmt.Errorf("failed to save weekend %s: %w", weekend.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bulk save: %w", err)
	}
	return nil
}

// GetByID retrieves a weekend by id, returning nil without error when the
// id is unknown
func (r *WeekendRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WeekendSchedule, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM weekends WHERE id = $1`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekend: %w", err)
	}

	weekend := &models.WeekendSchedule{}
	if err := json.Unmarshal(data, weekend); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weekend: %w", err)
	}
	return weekend, nil
}

// ListByUpdatedDesc retrieves weekends ordered by updated_at descending
func (r *WeekendRepository) ListByUpdatedDesc(ctx context.Context, limit, offset int) ([]*models.WeekendSchedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM weekends ORDER BY updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekends: %w", err)
	}
	defer rows.Close()

	var weekends []*models.WeekendSchedule
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan weekend: %w", err)
		}
		weekend := &models.WeekendSchedule{}
		if err := json.Unmarshal(data, weekend); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weekend: %w", err)
		}
		weekends = append(weekends, weekend)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekends: %w", err)
	}
	return weekends, nil
}

// Delete removes a weekend by id. Deleting an unknown id is an idempotent
// no-op.
func (r *WeekendRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM weekends WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete weekend: %w", err)
	}
	return nil
}

// Count returns the number of stored weekends
func (r *WeekendRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weekends`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count weekends: %w", err)
	}
	return count, nil
}

// DeleteAllButMostRecent keeps only the `keep` most recently updated
// weekends and drops the rest. Used by compaction.
func (r *WeekendRepository) DeleteAllButMostRecent(ctx context.Context, keep int) (int64, error) {
	query := `
		DELETE FROM weekends
		WHERE id NOT IN (
			SELECT id FROM weekends ORDER BY updated_at DESC LIMIT $1
		)
	`
	result, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to compact weekends: %w", err)
	}
	dropped, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return dropped, nil
}

// DeleteAll clears the weekends table. Used by destructive import.
func (r *WeekendRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM weekends`); err != nil {
		return fmt.Errorf("failed to clear weekends: %w", err)
	}
	return nil
}

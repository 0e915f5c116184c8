package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/weekendly/planner/internal/models"
)

// PendingChangeRepository handles the offline mutation queue table
type PendingChangeRepository struct {
	db *DB
}

// NewPendingChangeRepository creates a new pending change repository
func NewPendingChangeRepository(db *DB) *PendingChangeRepository {
	return &PendingChangeRepository{db: db}
}

// Add appends a change to the queue and fills in its assigned id
func (r *PendingChangeRepository) Add(ctx context.Context, change *models.PendingChange) error {
	if err := change.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(change.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal pending change payload: %w", err)
	}

	query := `
		INSERT INTO pending_changes (type, payload, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, change.Type, payload, change.Timestamp).Scan(&change.ID); err != nil {
		return fmt.Errorf("failed to add pending change: %w", err)
	}
	return nil
}

// ListOrdered retrieves all pending changes in FIFO order
func (r *PendingChangeRepository) ListOrdered(ctx context.Context) ([]*models.PendingChange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, payload, created_at FROM pending_changes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending changes: %w", err)
	}
	defer rows.Close()

	var changes []*models.PendingChange
	for rows.Next() {
		change := &models.PendingChange{}
		var payload []byte
		if err := rows.Scan(&change.ID, &change.Type, &payload, &change.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan pending change: %w", err)
		}
		if err := json.Unmarshal(payload, &change.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pending change payload: %w", err)
		}
		changes = append(changes, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending changes: %w", err)
	}
	return changes, nil
}

// Delete removes a single acknowledged change
func (r *PendingChangeRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_changes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete pending change: %w", err)
	}
	return nil
}

// Count returns the number of queued changes
func (r *PendingChangeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_changes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending changes: %w", err)
	}
	return count, nil
}

// PurgeOlderThan drops changes created before the cutoff regardless of sync
// status. Compaction accepts this data-loss risk.
func (r *PendingChangeRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pending_changes WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge pending changes: %w", err)
	}
	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return purged, nil
}

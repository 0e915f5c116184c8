package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weekendly/planner/internal/models"
)

// CategoryRepository handles catalog category database operations
type CategoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// SaveAll upserts a list of categories in a single transaction
func (r *CategoryRepository) SaveAll(ctx context.Context, categories []*models.ActivityCategory) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO categories (id, data)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`

	for _, category := range categories {
		data, err := json.Marshal(category)
		if err != nil {
			return fmt.Errorf("failed to marshal category %s: %w", category.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, category.ID, data); err != nil {
			return fmt.Errorf("failed to save category %s: %w", category.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit categories: %w", err)
	}
	return nil
}

// List retrieves all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*models.ActivityCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM categories ORDER BY data->>'name'`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.ActivityCategory
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		category := &models.ActivityCategory{}
		if err := json.Unmarshal(data, category); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// DeleteAll clears the categories table. Used by destructive import.
func (r *CategoryRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}
	return nil
}

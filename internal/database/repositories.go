package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/weekendly/planner/internal/models"
)

// WeekendRepositoryInterface defines the interface for weekend repository
// operations. The interfaces in this file exist so the persistence facade
// can be tested against mock implementations.
type WeekendRepositoryInterface interface {
	Save(ctx context.Context, weekend *models.WeekendSchedule) error
	BulkSave(ctx context.Context, weekends []*models.WeekendSchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WeekendSchedule, error)
	ListByUpdatedDesc(ctx context.Context, limit, offset int) ([]*models.WeekendSchedule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	DeleteAllButMostRecent(ctx context.Context, keep int) (int64, error)
	DeleteAll(ctx context.Context) error
}

// ActivityRepositoryInterface defines the interface for catalog activity
// repository operations
type ActivityRepositoryInterface interface {
	SaveAll(ctx context.Context, activities []*models.Activity) error
	List(ctx context.Context, limit, offset int) ([]*models.Activity, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

// CategoryRepositoryInterface defines the interface for category repository
// operations
type CategoryRepositoryInterface interface {
	SaveAll(ctx context.Context, categories []*models.ActivityCategory) error
	List(ctx context.Context) ([]*models.ActivityCategory, error)
	DeleteAll(ctx context.Context) error
}

// PreferencesRepositoryInterface defines the interface for the singleton
// preferences row
type PreferencesRepositoryInterface interface {
	Set(ctx context.Context, prefs *models.Preferences) error
	Get(ctx context.Context) (*models.Preferences, error)
	DeleteAll(ctx context.Context) error
}

// PendingChangeRepositoryInterface defines the interface for the offline
// mutation queue
type PendingChangeRepositoryInterface interface {
	Add(ctx context.Context, change *models.PendingChange) error
	ListOrdered(ctx context.Context) ([]*models.PendingChange, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MetadataRepositoryInterface defines the interface for the metadata table
type MetadataRepositoryInterface interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// Ensure concrete types implement the interfaces
var (
	_ WeekendRepositoryInterface       = (*WeekendRepository)(nil)
	_ ActivityRepositoryInterface      = (*ActivityRepository)(nil)
	_ CategoryRepositoryInterface      = (*CategoryRepository)(nil)
	_ PreferencesRepositoryInterface   = (*PreferencesRepository)(nil)
	_ PendingChangeRepositoryInterface = (*PendingChangeRepository)(nil)
	_ MetadataRepositoryInterface      = (*MetadataRepository)(nil)
)

// Package store composes the durable repositories, the TTL cache, and the
// sync queue into the single persistence API the schedule engine and
// handlers use. Reads go through the cache; writes invalidate it and, while
// offline, append to the pending-change queue.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"
	"github.com/weekendly/planner/internal/cache"
	"github.com/weekendly/planner/internal/database"
	"github.com/weekendly/planner/internal/models"
	transport "github.com/weekendly/planner/internal/sync"
)

const (
	// DefaultListLimit is applied when callers pass a non-positive limit
	DefaultListLimit = 50
	// CompactWeekendKeep is how many recently updated weekends compaction retains
	CompactWeekendKeep = 100
	// PendingRetention is how long unsynced pending changes survive compaction.
	// Purging regardless of sync status is a deliberate data-loss trade-off.
	PendingRetention = 30 * 24 * time.Hour
	// exportListLimit bounds how many rows an export reads per table
	exportListLimit = 10000
)

// StorageUsager reports storage accounting for the underlying database
type StorageUsager interface {
	StorageUsage(ctx context.Context) (used int64, quota int64, err error)
}

// Usage is the storage accounting passthrough result
type Usage struct {
	Used  int64 `json:"used"`
	Quota int64 `json:"quota"`
}

// Store is the persistence facade. It exclusively owns the sync queue and
// the durable store handle; the cache is shared read-through state with no
// authority.
type Store struct {
	weekends    database.WeekendRepositoryInterface
	activities  database.ActivityRepositoryInterface
	categories  database.CategoryRepositoryInterface
	preferences database.PreferencesRepositoryInterface
	pending     database.PendingChangeRepositoryInterface
	metadata    database.MetadataRepositoryInterface
	usage       StorageUsager
	cache       cache.Cache
	publisher   transport.Publisher
	logger      *zap.Logger

	mu             stdsync.Mutex
	online         bool
	syncInProgress bool
	lastErr        error
}

// New creates a facade over a live database connection
func New(db *database.DB, c cache.Cache, publisher transport.Publisher, logger *zap.Logger) *Store {
	return NewWithRepositories(Repositories{
		Weekends:    database.NewWeekendRepository(db),
		Activities:  database.NewActivityRepository(db),
		Categories:  database.NewCategoryRepository(db),
		Preferences: database.NewPreferencesRepository(db),
		Pending:     database.NewPendingChangeRepository(db),
		Metadata:    database.NewMetadataRepository(db),
		Usage:       db,
	}, c, publisher, logger)
}

// Repositories bundles the table repositories the facade composes
type Repositories struct {
	Weekends    database.WeekendRepositoryInterface
	Activities  database.ActivityRepositoryInterface
	Categories  database.CategoryRepositoryInterface
	Preferences database.PreferencesRepositoryInterface
	Pending     database.PendingChangeRepositoryInterface
	Metadata    database.MetadataRepositoryInterface
	Usage       StorageUsager
}

// NewWithRepositories creates a facade over explicit repositories. Tests use
// this with mock implementations.
func NewWithRepositories(repos Repositories, c cache.Cache, publisher transport.Publisher, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		weekends:    repos.Weekends,
		activities:  repos.Activities,
		categories:  repos.Categories,
		preferences: repos.Preferences,
		pending:     repos.Pending,
		metadata:    repos.Metadata,
		usage:       repos.Usage,
		cache:       c,
		publisher:   publisher,
		logger:      logger,
		online:      true,
	}
}

// LastError returns the most recent read-path or sync failure. Read paths
// degrade to empty results instead of raising; this is where the failure
// surfaces.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearLastError resets the observable error field
func (s *Store) ClearLastError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}

func (s *Store) setLastError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// Online reports the current connectivity flag
func (s *Store) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline flips the connectivity flag. Going online triggers an automatic
// background sync; going offline only flips the flag and cancels nothing.
func (s *Store) SetOnline(online bool) {
	s.mu.Lock()
	was := s.online
	s.online = online
	s.mu.Unlock()

	if online && !was {
		go func() {
			if err := s.SyncData(context.Background()); err != nil {
				s.logger.Error("reconnect_sync_failed", zap.Error(err))
			}
		}()
	}
}

// SaveWeekend durably saves a schedule, invalidates the weekends cache, and
// queues the mutation when offline
func (s *Store) SaveWeekend(ctx context.Context, weekend *models.WeekendSchedule) error {
	if err := s.weekends.Save(ctx, weekend); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, "weekends")

	if !s.Online() {
		return s.queueChange(ctx, models.PendingChange{
			Type:    models.ChangeSaveWeekend,
			Payload: models.PendingPayload{Weekend: weekend},
		})
	}
	return nil
}

// BulkSaveWeekends durably saves a list of schedules in one transaction
func (s *Store) BulkSaveWeekends(ctx context.Context, weekends []*models.WeekendSchedule) error {
	if err := s.weekends.BulkSave(ctx, weekends); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, "weekends")

	if !s.Online() {
		return s.queueChange(ctx, models.PendingChange{
			Type:    models.ChangeBulkSaveWeekends,
			Payload: models.PendingPayload{Weekends: weekends},
		})
	}
	return nil
}

// LoadWeekend returns a schedule by id, or nil when unknown
func (s *Store) LoadWeekend(ctx context.Context, id uuid.UUID) (*models.WeekendSchedule, error) {
	key := fmt.Sprintf("weekends:id:%s", id)
	weekend := &models.WeekendSchedule{}
	if s.getCached(ctx, key, weekend) {
		return weekend, nil
	}

	weekend, err := s.weekends.GetByID(ctx, id)
	if err != nil {
		s.degradeRead("load_weekend_failed", err)
		return nil, nil
	}
	if weekend != nil {
		s.putCache(ctx, key, weekend)
	}
	return weekend, nil
}

// LoadAllWeekends returns schedules ordered by updated_at descending
func (s *Store) LoadAllWeekends(ctx context.Context, limit, offset int) ([]*models.WeekendSchedule, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	key := fmt.Sprintf("weekends:list:%d:%d", limit, offset)
	var weekends []*models.WeekendSchedule
	if s.getCached(ctx, key, &weekends) {
		return weekends, nil
	}

	weekends, err := s.weekends.ListByUpdatedDesc(ctx, limit, offset)
	if err != nil {
		s.degradeRead("load_weekends_failed", err)
		return nil, nil
	}
	s.putCache(ctx, key, weekends)
	return weekends, nil
}

// DeleteWeekend removes a schedule. Unknown ids are idempotent no-ops.
func (s *Store) DeleteWeekend(ctx context.Context, id uuid.UUID) error {
	if err := s.weekends.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, "weekends")

	if !s.Online() {
		return s.queueChange(ctx, models.PendingChange{
			Type:    models.ChangeDeleteWeekend,
			Payload: models.PendingPayload{WeekendID: &id},
		})
	}
	return nil
}

// SaveActivities durably saves catalog activities
func (s *Store) SaveActivities(ctx context.Context, activities []*models.Activity) error {
	if err := s.activities.SaveAll(ctx, activities); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, "activities")

	if !s.Online() {
		return s.queueChange(ctx, models.PendingChange{
			Type:    models.ChangeSaveActivities,
			Payload: models.PendingPayload{Activities: activities},
		})
	}
	return nil
}

// LoadActivities returns catalog activities with pagination
func (s *Store) LoadActivities(ctx context.Context, limit, offset int) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	key := fmt.Sprintf("activities:%d:%d", limit, offset)
	var activities []*models.Activity
	if s.getCached(ctx, key, &activities) {
		return activities, nil
	}

	activities, err := s.activities.List(ctx, limit, offset)
	if err != nil {
		s.degradeRead("load_activities_failed", err)
		return nil, nil
	}
	s.putCache(ctx, key, activities)
	return activities, nil
}

// SaveCategories durably saves catalog categories
func (s *Store) SaveCategories(ctx context.Context, categories []*models.ActivityCategory) error {
	if err := s.categories.SaveAll(ctx, categories); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, "categories")

	if !s.Online() {
		return s.queueChange(ctx, models.PendingChange{
			Type:    models.ChangeSaveCategories,
			Payload: models.PendingPayload{Categories: categories},
		})
	}
	return nil
}

// LoadCategories returns all catalog categories
func (s *Store) LoadCategories(ctx context.Context) ([]*models.ActivityCategory, error) {
	const key = "categories"
	var categories []*models.ActivityCategory
	if s.getCached(ctx, key, &categories) {
		return categories, nil
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		s.degradeRead("load_categories_failed", err)
		return nil, nil
	}
	s.putCache(ctx, key, categories)
	return categories, nil
}

// SavePreferences durably saves the singleton preferences
func (s *Store) SavePreferences(ctx context.Context, prefs *models.Preferences) error {
	if err := s.preferences.Set(ctx, prefs); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, "preferences")

	if !s.Online() {
		return s.queueChange(ctx, models.PendingChange{
			Type:    models.ChangeSavePreferences,
			Payload: models.PendingPayload{Preferences: prefs},
		})
	}
	return nil
}

// LoadPreferences returns the singleton preferences, or nil when never saved
func (s *Store) LoadPreferences(ctx context.Context) (*models.Preferences, error) {
	const key = "preferences"
	prefs := &models.Preferences{}
	if s.getCached(ctx, key, prefs) {
		return prefs, nil
	}

	prefs, err := s.preferences.Get(ctx)
	if err != nil {
		s.degradeRead("load_preferences_failed", err)
		return nil, nil
	}
	if prefs != nil {
		s.putCache(ctx, key, prefs)
	}
	return prefs, nil
}

// queueChange appends a pending change with its timestamp
func (s *Store) queueChange(ctx context.Context, change models.PendingChange) error {
	change.Timestamp = time.Now().UTC()
	if err := s.pending.Add(ctx, &change); err != nil {
		return fmt.Errorf("failed to queue offline change: %w", err)
	}
	s.logger.Debug("queued_pending_change",
		zap.String("type", string(change.Type)),
		zap.Int64("id", change.ID),
	)
	return nil
}

// PendingChanges returns the queued offline mutations in FIFO order
func (s *Store) PendingChanges(ctx context.Context) ([]*models.PendingChange, error) {
	return s.pending.ListOrdered(ctx)
}

// getCached reads a cache entry into target, reporting whether it hit
func (s *Store) getCached(ctx context.Context, key string, target any) bool {
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		// A corrupt entry is a miss; drop it
		s.cache.Invalidate(ctx, key)
		return false
	}
	return true
}

// putCache stores a value with the default TTL. Serialization failures are
// logged and skipped; the durable store already holds the truth.
func (s *Store) putCache(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache_marshal_failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, data, cache.DefaultTTL)
}

// degradeRead records a swallowed read failure
func (s *Store) degradeRead(event string, err error) {
	s.setLastError(err)
	s.logger.Error(event, zap.Error(err))
}

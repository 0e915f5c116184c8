package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/weekendly/planner/internal/models"
)

// ExportData serializes every persisted table into a versioned snapshot.
// Volatile cache and queue state is not part of the envelope.
func (s *Store) ExportData(ctx context.Context) (*models.ExportEnvelope, error) {
	weekends, err := s.weekends.ListByUpdatedDesc(ctx, exportListLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to export weekends: %w", err)
	}
	activities, err := s.activities.List(ctx, exportListLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to export activities: %w", err)
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export categories: %w", err)
	}
	prefs, err := s.preferences.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export preferences: %w", err)
	}

	return &models.ExportEnvelope{
		Version:   models.ExportVersion,
		Timestamp: time.Now().UTC(),
		Data: models.ExportData{
			Weekends:    weekends,
			Activities:  activities,
			Categories:  categories,
			Preferences: prefs,
		},
	}, nil
}

// ImportData clears all tables, then restores them from the snapshot's data
// section. Missing sections are skipped rather than erroring; partial
// snapshots are accepted. The import is destructive by design.
func (s *Store) ImportData(ctx context.Context, envelope *models.ExportEnvelope) error {
	if envelope == nil {
		return fmt.Errorf("nil import envelope")
	}
	if envelope.Version > models.ExportVersion {
		return fmt.Errorf("%w: %d", models.ErrUnsupportedExportVersion, envelope.Version)
	}

	if err := s.weekends.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.activities.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.categories.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.preferences.DeleteAll(ctx); err != nil {
		return err
	}

	if len(envelope.Data.Weekends) > 0 {
		if err := s.weekends.BulkSave(ctx, envelope.Data.Weekends); err != nil {
			return fmt.Errorf("failed to restore weekends: %w", err)
		}
	}
	if len(envelope.Data.Activities) > 0 {
		if err := s.activities.SaveAll(ctx, envelope.Data.Activities); err != nil {
			return fmt.Errorf("failed to restore activities: %w", err)
		}
	}
	if len(envelope.Data.Categories) > 0 {
		if err := s.categories.SaveAll(ctx, envelope.Data.Categories); err != nil {
			return fmt.Errorf("failed to restore categories: %w", err)
		}
	}
	if envelope.Data.Preferences != nil {
		if err := s.preferences.Set(ctx, envelope.Data.Preferences); err != nil {
			return fmt.Errorf("failed to restore preferences: %w", err)
		}
	}

	for _, prefix := range []string{"weekends", "activities", "categories", "preferences"} {
		s.cache.InvalidatePrefix(ctx, prefix)
	}

	s.logger.Info("import_completed",
		zap.Int("weekends", len(envelope.Data.Weekends)),
		zap.Int("activities", len(envelope.Data.Activities)),
		zap.Int("categories", len(envelope.Data.Categories)),
	)
	return nil
}

// CompactDatabase applies the retention policy: keep the 100 most recently
// updated weekends and purge pending changes older than 30 days.
func (s *Store) CompactDatabase(ctx context.Context) error {
	dropped, err := s.weekends.DeleteAllButMostRecent(ctx, CompactWeekendKeep)
	if err != nil {
		return err
	}
	if dropped > 0 {
		s.cache.InvalidatePrefix(ctx, "weekends")
	}

	purged, err := s.pending.PurgeOlderThan(ctx, time.Now().UTC().Add(-PendingRetention))
	if err != nil {
		return err
	}

	s.logger.Info("compaction_completed",
		zap.Int64("weekends_dropped", dropped),
		zap.Int64("pending_purged", purged),
	)
	return nil
}

// StorageUsage passes through the database's storage accounting. Platforms
// without accounting report zeros; the call never fails the caller.
func (s *Store) StorageUsage(ctx context.Context) Usage {
	if s.usage == nil {
		return Usage{}
	}
	used, quota, err := s.usage.StorageUsage(ctx)
	if err != nil {
		s.logger.Warn("storage_usage_unavailable", zap.Error(err))
		return Usage{}
	}
	return Usage{Used: used, Quota: quota}
}

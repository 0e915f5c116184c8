package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/weekendly/planner/internal/database"
)

// SyncData flushes the pending-change queue to the sync transport in FIFO
// order. It is a no-op while offline, while another flush is in flight, or
// when the queue is empty. Each change is deleted only after its individual
// transport acknowledgment, so a partial failure preserves the unflushed
// tail. Flush failures are logged and surfaced through LastError rather
// than returned, so background syncs never block callers.
func (s *Store) SyncData(ctx context.Context) error {
	s.mu.Lock()
	if !s.online || s.syncInProgress {
		s.mu.Unlock()
		return nil
	}
	s.syncInProgress = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncInProgress = false
		s.mu.Unlock()
	}()

	changes, err := s.pending.ListOrdered(ctx)
	if err != nil {
		s.degradeRead("sync_list_failed", err)
		return nil
	}
	if len(changes) == 0 {
		return nil
	}

	s.logger.Info("sync_started", zap.Int("pending", len(changes)))

	for _, change := range changes {
		if err := s.publisher.Publish(ctx, change); err != nil {
			// Queue is preserved from this change onward; the next
			// reconnect or manual sync retries it.
			s.setLastError(fmt.Errorf("sync flush failed at change %d: %w", change.ID, err))
			s.logger.Error("sync_flush_failed",
				zap.Int64("change_id", change.ID),
				zap.String("change_type", string(change.Type)),
				zap.Error(err),
			)
			return nil
		}
		if err := s.pending.Delete(ctx, change.ID); err != nil {
			s.setLastError(fmt.Errorf("failed to drop acknowledged change %d: %w", change.ID, err))
			s.logger.Error("sync_dequeue_failed", zap.Int64("change_id", change.ID), zap.Error(err))
			return nil
		}
	}

	now := time.Now().UTC()
	if err := s.metadata.Set(ctx, database.MetadataKeyLastSyncTime, now.Format(time.RFC3339)); err != nil {
		s.logger.Warn("failed_to_stamp_last_sync_time", zap.Error(err))
	}

	s.logger.Info("sync_completed", zap.Int("flushed", len(changes)))
	return nil
}

// LastSyncTime returns when the queue last flushed completely; ok is false
// when no sync has succeeded yet
func (s *Store) LastSyncTime(ctx context.Context) (time.Time, bool, error) {
	value, ok, err := s.metadata.Get(ctx, database.MetadataKeyLastSyncTime)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed last_sync_time: %w", err)
	}
	return ts, true, nil
}

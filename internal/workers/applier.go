// Package workers contains the background consumers of the sync transport.
package workers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/google/uuid"
	"github.com/weekendly/planner/internal/models"
	transport "github.com/weekendly/planner/internal/sync"
)

// TargetStore is the persistence surface the applier writes through. The
// facade satisfies it; tests substitute a fake.
type TargetStore interface {
	SaveWeekend(ctx context.Context, weekend *models.WeekendSchedule) error
	BulkSaveWeekends(ctx context.Context, weekends []*models.WeekendSchedule) error
	DeleteWeekend(ctx context.Context, id uuid.UUID) error
	SaveActivities(ctx context.Context, activities []*models.Activity) error
	SaveCategories(ctx context.Context, categories []*models.ActivityCategory) error
	SavePreferences(ctx context.Context, prefs *models.Preferences) error
}

// Applier consumes flushed pending changes and applies them to its store.
// It is the receiving half of the sync pipeline; the facade's flush is the
// sending half.
type Applier struct {
	store  TargetStore
	logger *zap.Logger
}

// NewApplier creates a sync applier
func NewApplier(store TargetStore, logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{store: store, logger: logger}
}

// ProcessMessage applies one sync message and acknowledges it. Failures
// nack with requeue so a transient store outage does not lose the change.
func (a *Applier) ProcessMessage(ctx context.Context, msg transport.MessageInterface) error {
	change := msg.GetChange()
	if change == nil {
		_ = msg.Nack(false)
		return fmt.Errorf("sync message carried no change")
	}

	if err := a.apply(ctx, change); err != nil {
		a.logger.Error("apply_change_failed",
			zap.Int64("change_id", change.ID),
			zap.String("change_type", string(change.Type)),
			zap.Error(err),
		)
		_ = msg.Nack(true)
		return err
	}

	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack change %d: %w", change.ID, err)
	}

	a.logger.Debug("change_applied",
		zap.Int64("change_id", change.ID),
		zap.String("change_type", string(change.Type)),
	)
	return nil
}

func (a *Applier) apply(ctx context.Context, change *models.PendingChange) error {
	if err := change.Validate(); err != nil {
		return err
	}

	switch change.Type {
	case models.ChangeSaveWeekend:
		return a.store.SaveWeekend(ctx, change.Payload.Weekend)
	case models.ChangeBulkSaveWeekends:
		return a.store.BulkSaveWeekends(ctx, change.Payload.Weekends)
	case models.ChangeDeleteWeekend:
		return a.store.DeleteWeekend(ctx, *change.Payload.WeekendID)
	case models.ChangeSaveActivities:
		return a.store.SaveActivities(ctx, change.Payload.Activities)
	case models.ChangeSaveCategories:
		return a.store.SaveCategories(ctx, change.Payload.Categories)
	case models.ChangeSavePreferences:
		return a.store.SavePreferences(ctx, change.Payload.Preferences)
	default:
		return fmt.Errorf("unknown change type: %s", change.Type)
	}
}

// Run consumes messages until the context is cancelled
func (a *Applier) Run(ctx context.Context, consumer transport.Consumer, prefetch int) error {
	msgChan, errChan, err := consumer.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}
			if err := a.ProcessMessage(ctx, msg); err != nil {
				a.logger.Error("process_message_failed", zap.Error(err))
			}
		case err, ok := <-errChan:
			if !ok {
				return nil
			}
			a.logger.Error("sync_consumer_error", zap.Error(err))
		}
	}
}

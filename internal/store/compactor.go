package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Compactor runs periodic retention sweeps over the durable store
type Compactor struct {
	store    *Store
	interval time.Duration
	logger   *zap.Logger
}

// NewCompactor creates a compactor that calls CompactDatabase every interval
func NewCompactor(store *Store, interval time.Duration, logger *zap.Logger) *Compactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compactor{store: store, interval: interval, logger: logger}
}

// Start runs the compaction loop until ctx is cancelled
func (c *Compactor) Start(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if err := c.store.CompactDatabase(sweepCtx); err != nil {
				c.logger.Error("compaction_sweep_failed", zap.Error(err))
			}
			cancel()
		}
	}
}

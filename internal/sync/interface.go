package sync

import (
	"context"

	"github.com/weekendly/planner/internal/models"
)

// Publisher is the remote sync endpoint the pending-change queue flushes to.
// Publish must not return nil until the transport has durably accepted the
// change; the flush deletes a pending change only after its publish returns.
type Publisher interface {
	// Publish sends one change and waits for the transport acknowledgment
	Publish(ctx context.Context, change *models.PendingChange) error

	// Close closes the transport connection
	Close() error

	// HealthCheck verifies the transport connection is healthy
	HealthCheck(ctx context.Context) error
}

// MessageInterface defines the interface for consumed sync messages.
// This enables better testability by allowing mock implementations.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetChange() *models.PendingChange
}

// Consumer is the receiving side of the sync transport
type Consumer interface {
	// Consume returns a channel of sync messages. Messages are delivered
	// as they arrive; the caller must acknowledge each one. Prefetch
	// controls how many unacknowledged messages the consumer can hold.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error
}

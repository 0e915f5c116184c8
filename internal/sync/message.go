package sync

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/weekendly/planner/internal/models"
)

// Message wraps a consumed pending change with its delivery information
type Message struct {
	Change      *models.PendingChange
	DeliveryTag uint64
	Channel     *amqp.Channel
}

// Ack acknowledges the message
func (m *Message) Ack() error {
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack negatively acknowledges the message
func (m *Message) Nack(requeue bool) error {
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}

// GetChange returns the carried pending change
func (m *Message) GetChange() *models.PendingChange {
	return m.Change
}

package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/weekendly/planner/internal/models"
)

const (
	// DefaultExchangeName is the default sync exchange name
	DefaultExchangeName = "planner_sync"
	// DefaultQueueName is the default sync change queue name
	DefaultQueueName = "planner_sync_changes"
	// DefaultDLQName is the default dead letter queue name
	DefaultDLQName = "planner_sync_changes_dlq"
	// routingKey is the routing key for sync changes
	routingKey = "changes"
)

// RabbitMQTransport implements Publisher and Consumer over RabbitMQ.
// The publishing channel runs in confirm mode so Publish only returns after
// the broker has accepted the message.
type RabbitMQTransport struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	queueName    string
	dlqName      string
}

// NewRabbitMQTransport connects to RabbitMQ and declares the sync topology
func NewRabbitMQTransport(amqpURL string) (*RabbitMQTransport, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	t := &RabbitMQTransport{
		conn:         conn,
		channel:      ch,
		exchangeName: DefaultExchangeName,
		queueName:    DefaultQueueName,
		dlqName:      DefaultDLQName,
	}

	if err := t.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup sync topology: %w", err)
	}

	return t, nil
}

// setup declares the exchange, queue, and dead letter queue
func (t *RabbitMQTransport) setup() error {
	err := t.channel.ExchangeDeclare(
		t.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = t.channel.QueueDeclare(
		t.dlqName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	err = t.channel.QueueBind(t.dlqName, "dlq", t.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    t.exchangeName,
		"x-dead-letter-routing-key": "dlq",
	}
	_, err = t.channel.QueueDeclare(
		t.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		queueArgs,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = t.channel.QueueBind(t.queueName, routingKey, t.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	return nil
}

// Publish sends one pending change and waits for the broker confirm. The
// per-item acknowledgment is what allows the flush to delete changes one at
// a time instead of clearing the queue on faith.
func (t *RabbitMQTransport) Publish(ctx context.Context, change *models.PendingChange) error {
	if err := change.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal pending change: %w", err)
	}

	confirmation, err := t.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		t.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    strconv.FormatInt(change.ID, 10),
			Type:         string(change.Type),
			Timestamp:    change.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish pending change: %w", err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for publish confirm: %w", err)
	}
	if !acked {
		return fmt.Errorf("broker rejected pending change %d", change.ID)
	}
	return nil
}

// Consume returns a channel of sync messages using async delivery
func (t *RabbitMQTransport) Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error) {
	// Dedicated channel for consuming; the confirm-mode channel stays
	// reserved for publishing
	consumeCh, err := t.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}

	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		t.queueName,
		"",    // consumer tag (auto-generate)
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	msgChan := make(chan *Message, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)
		defer func() {
			_ = consumeCh.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					errChan <- fmt.Errorf("delivery channel closed")
					return
				}

				var change models.PendingChange
				if err := json.Unmarshal(delivery.Body, &change); err != nil {
					// Invalid message, send to DLQ
					_ = delivery.Nack(false, false)
					errChan <- fmt.Errorf("failed to unmarshal pending change: %w", err)
					continue
				}
				if err := change.Validate(); err != nil {
					_ = delivery.Nack(false, false)
					errChan <- fmt.Errorf("invalid pending change: %w", err)
					continue
				}

				msg := &Message{
					Change:      &change,
					DeliveryTag: delivery.DeliveryTag,
					Channel:     consumeCh,
				}

				select {
				case <-ctx.Done():
					_ = delivery.Nack(false, true)
					return
				case msgChan <- msg:
				}
			}
		}
	}()

	return msgChan, errChan, nil
}

// HealthCheck verifies the connection is open
func (t *RabbitMQTransport) HealthCheck(_ context.Context) error {
	if t.conn == nil || t.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	return nil
}

// Close closes the channel and connection
func (t *RabbitMQTransport) Close() error {
	var err error
	if t.channel != nil {
		err = t.channel.Close()
	}
	if t.conn != nil {
		if closeErr := t.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// Ensure RabbitMQTransport satisfies both transport interfaces
var (
	_ Publisher = (*RabbitMQTransport)(nil)
	_ Consumer  = (*RabbitMQTransport)(nil)
)

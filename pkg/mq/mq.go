// Package mq publishes notification events to RabbitMQ. The mailer worker in
// cmd/mailer consumes them.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"marina-guard/backend/config"
)

// event types
const (
	EventTimesheetSubmitted = "timesheet.submitted"
	EventTimesheetApproved  = "timesheet.approved"
	EventTimesheetRejected  = "timesheet.rejected"
	EventIncidentFiled      = "incident.filed"
	EventAccountCreated     = "account.created"
)

// Event a notification addressed to one or more mailboxes
type Event struct {
	Type       string            `json:"type"`
	To         []string          `json:"to"`
	Data       map[string]string `json:"data"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Decode parses a message body
func Decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" || len(e.To) == 0 {
		return Event{}, fmt.Errorf("decode event: type and recipients are required")
	}
	return e, nil
}

// Notifier publishes events
type Notifier interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event; used when the queue is disabled
type Nop struct{}

// Publish does nothing
func (Nop) Publish(context.Context, Event) error { return nil }

// Publisher Notifier backed by a durable RabbitMQ queue
type Publisher struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	timeout time.Duration
	logger  *zap.Logger
	mu      sync.Mutex // amqp channels are not safe for concurrent publishes
}

// Dial connects and declares the queue
func Dial(cfg *config.QueueConfig, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := DeclareQueue(ch, cfg.Name); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	timeout := time.Duration(cfg.PublishTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	logger.Info("rabbitmq connected", zap.String("queue", cfg.Name))
	return &Publisher{conn: conn, ch: ch, queue: cfg.Name, timeout: timeout, logger: logger}, nil
}

// DeclareQueue durable, non-exclusive queue shared by publisher and worker
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %s: %w", name, err)
	}
	return q, nil
}

// Publish sends e as a persistent JSON message
func (p *Publisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.OccurredAt,
			Type:         e.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Close closes channel and connection
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.logger.Warn("close channel", zap.Error(err))
	}
	return p.conn.Close()
}

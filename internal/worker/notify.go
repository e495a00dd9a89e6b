// Package worker drains the notification queue into SMTP.
package worker

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"marina-guard/backend/pkg/mailer"
	"marina-guard/backend/pkg/mq"
)

// Outcome what to do with a delivery after processing
type Outcome int

const (
	Ack Outcome = iota
	Requeue
	Drop
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "drop"
	}
}

// Acknowledger the subset of amqp.Delivery the worker settles with
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Notifier turns queued events into mail
type Notifier struct {
	sender mailer.Sender
	from   string
	logger *zap.Logger
}

// NewNotifier creates a Notifier
func NewNotifier(sender mailer.Sender, from string, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, from: from, logger: logger.Named("notifier")}
}

// Process handles one message body. Malformed or unknown events are dropped;
// a send failure is retried once, then dropped.
func (n *Notifier) Process(ctx context.Context, body []byte, redelivered bool) Outcome {
	e, err := mq.Decode(body)
	if err != nil {
		n.logger.Warn("discard malformed event", zap.Error(err))
		return Drop
	}

	msg, err := mailer.Build(n.from, e)
	if err != nil {
		var unknown mailer.ErrUnknownEvent
		if errors.As(err, &unknown) {
			n.logger.Warn("discard unknown event", zap.String("type", e.Type))
		} else {
			n.logger.Warn("discard unrenderable event", zap.String("type", e.Type), zap.Error(err))
		}
		return Drop
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		if redelivered {
			n.logger.Error("send failed twice, dropping", zap.String("type", e.Type), zap.Error(err))
			return Drop
		}
		n.logger.Warn("send failed, requeueing", zap.String("type", e.Type), zap.Error(err))
		return Requeue
	}

	n.logger.Info("notification sent", zap.String("type", e.Type), zap.Int("recipients", len(e.To)))
	return Ack
}

// Settle applies an outcome to a delivery
func Settle(d Acknowledger, o Outcome) error {
	switch o {
	case Ack:
		return d.Ack(false)
	case Requeue:
		return d.Nack(false, true)
	default:
		return d.Nack(false, false)
	}
}

// Run consumes until ctx is done or the channel closes
func (n *Notifier) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			outcome := n.Process(ctx, d.Body, d.Redelivered)
			if err := Settle(d, outcome); err != nil {
				n.logger.Error("settle delivery", zap.String("outcome", outcome.String()), zap.Error(err))
			}
		}
	}
}

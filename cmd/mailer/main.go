// Command mailer consumes notification events from RabbitMQ and delivers
// them over SMTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marina-guard/backend/config"
	"marina-guard/backend/internal/worker"
	applogger "marina-guard/backend/pkg/logger"
	"marina-guard/backend/pkg/mailer"
	"marina-guard/backend/pkg/mq"
)

const prefetch = 8

func main() {
	cfg, err := config.Load(os.Getenv("MARINA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("mailer stopped", zap.Error(err))
	}
	logger.Info("mailer stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.Mail.SMTPHost == "" || cfg.Mail.From == "" {
		return fmt.Errorf("mail.smtp_host and mail.from are required")
	}
	sender, err := mailer.NewSMTP(&cfg.Mail)
	if err != nil {
		return err
	}
	defer sender.Close()

	conn, err := amqp.Dial(cfg.Queue.DSN)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := mq.DeclareQueue(ch, cfg.Queue.Name); err != nil {
		return err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(
		cfg.Queue.Name,
		"marina-mailer", // consumer tag
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", cfg.Queue.Name, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := worker.NewNotifier(sender, cfg.Mail.From, logger)
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return notifier.Run(gctx, deliveries)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return nil
			}
			return fmt.Errorf("rabbitmq connection closed: %w", amqpErr)
		}
	})

	logger.Info("mailer consuming", zap.String("queue", cfg.Queue.Name))
	return g.Wait()
}

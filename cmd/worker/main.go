// Command worker consumes booking.confirmed messages and emails the booker.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"eventbooking/config"
	"eventbooking/internal/adapters/email"
	"eventbooking/internal/adapters/queue"
	"eventbooking/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("worker stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailer, err := email.NewMailer(cfg.Email, logger)
	if err != nil {
		return err
	}
	notifier := services.NewBookingNotifier(services.NewEmailService(mailer, email.NewTemplateRenderer(), logger))
	consumer := queue.NewConsumer(cfg.RabbitMQURL, notifier, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("booking consumer started", "queue", queue.BookingConfirmedQueue)
		return consumer.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down worker")
		return nil
	})
	return g.Wait()
}

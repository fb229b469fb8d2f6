package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"eventbooking/internal/domain"
)

const (
	defaultPrefetch = 20
	maxBackoff      = 30 * time.Second
)

// Consumer delivers booking.confirmed messages to a handler, reconnecting
// with exponential backoff until its context is cancelled.
type Consumer struct {
	url      string
	handler  domain.BookingConfirmedHandler
	logger   *slog.Logger
	prefetch int
}

// NewConsumer returns a Consumer for the broker at url.
func NewConsumer(url string, handler domain.BookingConfirmedHandler, logger *slog.Logger) *Consumer {
	return &Consumer{url: url, handler: handler, logger: logger, prefetch: defaultPrefetch}
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err == nil {
			backoff = time.Second
			err = c.consume(ctx, conn)
			_ = conn.Close()
		}
		if ctx.Err() != nil {
			return nil
		}
		c.logger.WarnContext(ctx, "booking consumer disconnected", "err", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	deliveries, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	c.logger.InfoContext(ctx, "booking consumer started", "queue", BookingConfirmedQueue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.settle(ctx, d)
		}
	}
}

func (c *Consumer) settle(ctx context.Context, d amqp.Delivery) {
	var err error
	switch c.handle(ctx, d.Body, d.Redelivered) {
	case ack:
		err = d.Ack(false)
	case requeue:
		err = d.Nack(false, true)
	default:
		err = d.Nack(false, false)
	}
	if err != nil {
		c.logger.WarnContext(ctx, "settle delivery failed", "err", err)
	}
}

type outcome int

const (
	ack outcome = iota
	reject
	requeue
)

// handle decodes one message and runs the handler. Malformed payloads are
// rejected outright; a failing handler gets one redelivery.
func (c *Consumer) handle(ctx context.Context, body []byte, redelivered bool) outcome {
	var msg domain.BookingConfirmed
	if err := json.Unmarshal(body, &msg); err != nil {
		c.logger.WarnContext(ctx, "dropping malformed booking message", "err", err)
		return reject
	}
	if msg.BookingID == "" {
		c.logger.WarnContext(ctx, "dropping booking message without id")
		return reject
	}
	if err := c.handler.HandleBookingConfirmed(ctx, &msg); err != nil {
		c.logger.ErrorContext(ctx, "handle booking confirmed failed", "booking_id", msg.BookingID, "err", err)
		if redelivered || errors.Is(err, domain.ErrInvalidInput) {
			return reject
		}
		return requeue
	}
	return ack
}

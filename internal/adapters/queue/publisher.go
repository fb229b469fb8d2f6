// Package queue carries booking notifications over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"eventbooking/internal/domain"
)

// BookingConfirmedQueue is the durable queue booking confirmations are routed to.
const BookingConfirmedQueue = "booking.confirmed"

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialFunc opens a channel and returns it with a func closing the underlying connection.
type dialFunc func(url string) (channel, func() error, error)

func dialAMQP(url string) (channel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, conn.Close, nil
}

// Publisher publishes BookingConfirmed messages. It dials lazily and keeps one
// channel open; a failed publish drops the channel so the next call redials.
type Publisher struct {
	url    string
	dial   dialFunc
	logger *slog.Logger

	mu        sync.Mutex
	ch        channel
	closeConn func() error
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{url: url, dial: dialAMQP, logger: logger}
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, msg *domain.BookingConfirmed) error {
	pub, err := encode(msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if err := p.connect(); err != nil {
			return err
		}
	}
	if err := p.ch.PublishWithContext(ctx, "", BookingConfirmedQueue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", BookingConfirmedQueue, err)
	}
	p.logger.DebugContext(ctx, "booking confirmed published", "booking_id", msg.BookingID)
	return nil
}

func (p *Publisher) connect() error {
	ch, closeConn, err := p.dial(p.url)
	if err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = closeConn()
		return fmt.Errorf("declare queue: %w", err)
	}
	p.ch, p.closeConn = ch, closeConn
	return nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.closeConn != nil {
		_ = p.closeConn()
	}
	p.ch, p.closeConn = nil, nil
}

// Close releases the broker connection, if any.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

func encode(msg *domain.BookingConfirmed) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal booking confirmed: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.BookingID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

type noopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher returns a publisher that only logs. Used when no broker is configured.
func NewNoopPublisher(logger *slog.Logger) domain.BookingPublisher {
	return &noopPublisher{logger: logger}
}

func (n *noopPublisher) PublishBookingConfirmed(ctx context.Context, msg *domain.BookingConfirmed) error {
	n.logger.DebugContext(ctx, "booking confirmed (noop publisher)", "booking_id", msg.BookingID)
	return nil
}

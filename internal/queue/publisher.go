package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends inventory events to a broker.
// Publishing happens after the event is stored, so failures are reported but never undo the append.
type Publisher interface {
	Publish(ctx context.Context, event InventoryEvent) error
	Close() error
}

// DefaultDialTimeout bounds connecting to the broker.
const DefaultDialTimeout = 5 * time.Second

// Config holds RabbitMQ connection settings.
type Config struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
}

// AMQPPublisher keeps one connection and channel open and redials after a broken connection.
type AMQPPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the durable queue.
func NewAMQPPublisher(cfg Config) (*AMQPPublisher, error) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueueName
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}

	p := &AMQPPublisher{url: cfg.URL, queue: cfg.Queue, dialTimeout: cfg.DialTimeout}
	if err := p.connect(); err != nil {
		return nil, err
	}

	log.Printf("[AMQPPublisher] Connected - queue:%s", p.queue)
	return p, nil
}

// connect must be called with mu held (or before the publisher is shared).
func (p *AMQPPublisher) connect() error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.dialTimeout),
	})
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}

	p.conn = conn
	if err := p.openChannel(); err != nil {
		_ = conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// openChannel opens a channel on the current connection and declares the queue.
func (p *AMQPPublisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to declare queue %s: %w", p.queue, err)
	}

	p.ch = ch
	return nil
}

// ensureOpen redials a closed connection and reopens a channel closed by a
// channel-level exception. mu must be held.
func (p *AMQPPublisher) ensureOpen() error {
	if p.conn == nil || p.conn.IsClosed() {
		return p.connect()
	}
	if p.ch == nil || p.ch.IsClosed() {
		log.Printf("[AMQPPublisher] Channel closed, reopening")
		return p.openChannel()
	}
	return nil
}

// Publish sends event as a persistent JSON message on the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, event InventoryEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureOpen(); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.MessageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("failed to publish event %d: %w", event.Seq, err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event InventoryEvent) error { return nil }
func (NoopPublisher) Close() error                                            { return nil }

var (
	_ Publisher = (*AMQPPublisher)(nil)
	_ Publisher = NoopPublisher{}
)

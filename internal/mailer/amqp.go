package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPMailer publishes reset emails to a durable RabbitMQ queue. The mail
// consumer process delivers them.
type AMQPMailer struct {
	url   string
	queue string
	log   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPMailer dials the broker and declares the queue.
func NewAMQPMailer(url, queue string, log *zap.Logger) (*AMQPMailer, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	m := &AMQPMailer{url: url, queue: queue, log: log}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.connect(); err != nil {
		return nil, err
	}
	return m, nil
}

// dial connects within DialTimeout, including the protocol handshake.
func dial(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(DialTimeout),
	})
}

func (m *AMQPMailer) connect() error {
	conn, err := dial(m.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(m.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue %s: %w", m.queue, err)
	}
	m.conn = conn
	m.ch = ch
	return nil
}

// SendPasswordReset publishes a persistent PasswordResetEmail. A closed
// connection is redialed once, bounded by DialTimeout.
func (m *AMQPMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	body, err := json.Marshal(NewPasswordResetEmail(email, link))
	if err != nil {
		return fmt.Errorf("marshal reset email: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil || m.conn.IsClosed() || m.ch == nil || m.ch.IsClosed() {
		m.log.Warn("broker connection lost, redialing", zap.String("queue", m.queue))
		if err := m.connect(); err != nil {
			return err
		}
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := m.ch.PublishWithContext(ctx, "", m.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish reset email: %w", err)
	}
	return nil
}

// Close closes the channel and connection.
func (m *AMQPMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ch != nil {
		_ = m.ch.Close()
	}
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}

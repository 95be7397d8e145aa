package mailer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultQueue is the durable queue carrying password reset emails.
const DefaultQueue = "mail.password_reset"

// DialTimeout bounds the TCP connect and AMQP handshake with the broker.
const DialTimeout = 2 * time.Second

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// PasswordResetEmail is the message published for each reset request.
type PasswordResetEmail struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Link        string    `json:"link"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewPasswordResetEmail stamps a new event with an id and the current time.
func NewPasswordResetEmail(email, link string) PasswordResetEmail {
	return PasswordResetEmail{
		ID:          uuid.New().String(),
		Email:       email,
		Link:        link,
		RequestedAt: time.Now().UTC(),
	}
}

// LogMailer writes reset links to the log instead of sending them. Used when
// no broker is configured.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// SendPasswordReset logs the link.
func (m *LogMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	m.log.Info("password reset email", zap.String("email", email), zap.String("link", link))
	return nil
}

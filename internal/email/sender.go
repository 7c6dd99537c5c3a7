package email

import (
	"context"

	"rentacar-backend/internal/logger"
)

// Message represents an email to be sent
type Message struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

// Sender delivers a single message through a provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no provider is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	logger.Info("Email (log provider)", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

package email

import (
	"context"
	"fmt"

	"rentacar-backend/internal/logger"

	"gopkg.in/gomail.v2"
)

type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPSender(host string, port int, username, password, from, fromName string) *SMTPSender {
	return &SMTPSender{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}
}

func (s *SMTPSender) buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.IsHTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}
	return m
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	logger.ExternalServiceCall("smtp", "DialAndSend", "to", msg.To)
	err := s.dialer.DialAndSend(s.buildMessage(msg))
	logger.ExternalServiceResult("smtp", "DialAndSend", err, "to", msg.To)
	if err != nil {
		return fmt.Errorf("failed to send email via smtp: %w", err)
	}
	return nil
}

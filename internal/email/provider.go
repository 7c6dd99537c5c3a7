package email

import (
	"fmt"

	"rentacar-backend/internal/config"
)

// NewSender builds the sender for the configured provider.
func NewSender(cfg *config.Config) (Sender, error) {
	switch cfg.Email.Provider {
	case "smtp":
		return NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.Email.From, cfg.Email.FromName), nil
	case "sendgrid":
		return NewSendGridSender(cfg.SendGrid.APIKey, cfg.Email.From, cfg.Email.FromName), nil
	case "", "log":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}
}

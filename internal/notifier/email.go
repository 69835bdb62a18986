package notifier

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the email transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// EmailChannel delivers messages over SMTP. When a message carries an
// HTML body it is attached as a text/html alternative alongside the
// plain-text part.
type EmailChannel struct {
	dialer *gomail.Dialer
	from   string
	send   func(m *gomail.Message) error
}

func NewEmailChannel(cfg SMTPConfig) (*EmailChannel, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	ch := &EmailChannel{dialer: dialer, from: cfg.From}
	ch.send = ch.dialAndSend
	return ch, nil
}

func (c *EmailChannel) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	// gomail has no context support; run the send in a goroutine so the
	// caller's deadline still bounds the wait.
	done := make(chan error, 1)
	go func() {
		done <- c.send(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", msg.Recipient, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("email send to %s aborted: %w", msg.Recipient, ctx.Err())
	}
}

func (c *EmailChannel) dialAndSend(m *gomail.Message) error {
	return c.dialer.DialAndSend(m)
}

package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"
)

// SMTPConfig configures email delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	To       []string
	Username string
	Password string
	// TLSMode is "auto" (STARTTLS when offered), "ssl" or "none".
	TLSMode string
	// Timeout bounds dialing and each SMTP exchange. Zero means 10s.
	Timeout time.Duration
}

const defaultSMTPTimeout = 10 * time.Second

// SMTPPublisher sends alerts as plain-text email.
type SMTPPublisher struct {
	cfg  SMTPConfig
	send func(context.Context, *mail.Message) error
}

// NewSMTPPublisher builds a publisher that dials cfg.Host for each message.
func NewSMTPPublisher(cfg SMTPConfig) *SMTPPublisher {
	p := &SMTPPublisher{cfg: cfg}
	p.send = p.dialAndSend
	return p
}

// Publish sends subject and body to every recipient.
func (p *SMTPPublisher) Publish(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(p.cfg.To) == 0 {
		return fmt.Errorf("smtp send: no recipients configured")
	}

	m := mail.NewMessage()
	m.SetHeader("From", p.cfg.From)
	m.SetHeader("To", p.cfg.To...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := p.send(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (p *SMTPPublisher) dialAndSend(ctx context.Context, m *mail.Message) error {
	return p.dialer(ctx).DialAndSend(m)
}

// dialer caps the configured timeout at the context deadline.
func (p *SMTPPublisher) dialer(ctx context.Context) *mail.Dialer {
	d := mail.NewDialer(p.cfg.Host, p.cfg.Port, p.cfg.Username, p.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: p.cfg.Host}
	switch p.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	}

	d.Timeout = p.cfg.Timeout
	if d.Timeout <= 0 {
		d.Timeout = defaultSMTPTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d.Timeout {
			d.Timeout = max(left, time.Millisecond)
		}
	}
	return d
}

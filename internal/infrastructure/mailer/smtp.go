// Package mailer implements the outbound mail transport.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"golang.org/x/time/rate"

	"github.com/pickpost/backend/internal/domain"
)

// Compile-time interface guard.
var _ domain.Sender = (*SMTPSender)(nil)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// SendsPerMinute caps outbound throughput; most relay providers
	// throttle well below raw connection speed.
	SendsPerMinute int
}

// SMTPSender sends plain-text email over SMTP with optional PLAIN auth and a
// client-side send rate cap.
type SMTPSender struct {
	cfg     SMTPConfig
	limiter *rate.Limiter
	// sendMail is swapped out in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTP sender from config
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	perMinute := cfg.SendsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	return &SMTPSender{
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 5),
		sendMail: smtp.SendMail,
	}
}

// Send delivers one message. It blocks on the rate limiter, so a cancelled
// context aborts queued sends cleanly.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	from := s.cfg.From
	fromHeader := from
	if s.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.cfg.FromName, from)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		fromHeader, to, subject, body))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.sendMail(addr, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

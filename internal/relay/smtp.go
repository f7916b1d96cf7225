package relay

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
)

// SMTPConfig configures the SMTP mailer.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
	// From supplies the display name. The address is always User, which
	// submission servers require.
	From string
}

// SMTP delivers through an authenticated SMTP submission server.
type SMTP struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTP returns an SMTP mailer. Host and port default to Gmail
// submission.
func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTP{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTP) Name() string { return "smtp" }

// Send composes a plain-text message and submits it. The returned id is
// the generated Message-ID.
func (s *SMTP) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	raw := composeSMTP(s.cfg, msg, id)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.User, []string{s.cfg.To}, raw); err != nil {
		return "", fmt.Errorf("sending mail via %s: %w", addr, err)
	}
	return id, nil
}

func composeSMTP(cfg SMTPConfig, msg Message, id string) []byte {
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, msg.Name, msg.Email, msg.Message)

	var b strings.Builder
	b.WriteString("To: " + cfg.To + "\r\n")
	b.WriteString("Subject: Portfolio Contact: " + headerSafe(msg.Name) + "\r\n")
	b.WriteString("From: " + fromHeader(cfg) + "\r\n")
	b.WriteString("Reply-To: " + headerSafe(msg.Email) + "\r\n")
	b.WriteString("Message-ID: <" + id + "@" + cfg.Host + ">\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}

func fromHeader(cfg SMTPConfig) string {
	addr, err := mail.ParseAddress(cfg.From)
	if err != nil || addr.Name == "" {
		return cfg.User
	}
	return (&mail.Address{Name: addr.Name, Address: cfg.User}).String()
}

// headerSafe strips line breaks so form input cannot add headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

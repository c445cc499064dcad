package email

import (
	"context"
	"fmt"
	"mime/quotedprintable"
	"net/smtp"
	"strings"

	"limelight/internal/config"
)

// Message is one outbound email with both bodies attached.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers digest emails. Implementations should treat delivery as
// best effort; the pipeline swallows their failures.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

// NewSMTPSender builds a sender from config. Returns nil when no SMTP host
// is configured, which disables email delivery.
func NewSMTPSender(cfg config.Email) *SMTPSender {
	if cfg.SMTPHost == "" {
		return nil
	}
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
	}
}

// Send delivers msg as a multipart/alternative message.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient address required")
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	body, err := s.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to build email message: %w", err)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{msg.To}, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(msg Message) ([]byte, error) {
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}

	const boundary = "limelight-digest-boundary"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	}
	for _, part := range parts {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s\r\n", part.contentType)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		w := quotedprintable.NewWriter(&b)
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String()), nil
}

// MockSender records sent messages for tests.
type MockSender struct {
	SendFunc func(ctx context.Context, msg Message) error
	Sent     []Message
}

func (m *MockSender) Send(ctx context.Context, msg Message) error {
	m.Sent = append(m.Sent, msg)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return nil
}

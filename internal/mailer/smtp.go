package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// Config holds SMTP delivery settings.
type Config struct {
	Host        string
	Port        int
	User        string
	Pass        string
	FromAddress string
	FromName    string
	To          []string
}

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a single outgoing email.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer sends emails via SMTP. With no host configured it prints messages
// to stdout instead.
type Mailer struct {
	cfg    *Config
	sendFn func(Message) error
}

// New returns a Mailer using cfg.
func New(cfg *Config) *Mailer {
	m := &Mailer{cfg: cfg}
	m.sendFn = m.deliver
	return m
}

// Recipients returns the configured destination addresses.
func (m *Mailer) Recipients() []string {
	return append([]string(nil), m.cfg.To...)
}

// Send delivers msg. An empty msg.To uses the configured recipients.
func (m *Mailer) Send(msg Message) error {
	if len(msg.To) == 0 {
		msg.To = m.Recipients()
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("mailer: no recipient configured")
	}
	return m.sendFn(msg)
}

func (m *Mailer) deliver(msg Message) error {
	cfg := m.cfg

	raw, err := m.formatMessage(msg)
	if err != nil {
		return fmt.Errorf("mailer: build message: %w", err)
	}

	if cfg.Host == "" {
		slog.Warn("mailer: SMTP_HOST not set, printing message instead of sending", "to", msg.To, "subject", msg.Subject)
		fmt.Println("=== EMAIL WOULD BE SENT ===")
		fmt.Println(raw)
		fmt.Println("=== END EMAIL ===")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, cfg.FromAddress, msg.To, []byte(raw)); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

// formatMessage renders headers and body. Messages with attachments are
// multipart/mixed with base64 parts wrapped at 76 columns.
func (m *Mailer) formatMessage(msg Message) (string, error) {
	from := m.cfg.FromAddress
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromAddress)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachments) == 0 {
		buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		buf.WriteString(msg.Body)
		return buf.String(), nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return "", err
	}
	if _, err := textPart.Write([]byte(msg.Body)); err != nil {
		return "", err
	}

	for _, att := range msg.Attachments {
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", att.ContentType)
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))

		attPart, err := writer.CreatePart(attHeader)
		if err != nil {
			return "", err
		}

		encoded := base64.StdEncoding.EncodeToString(att.Data)
		for i := 0; i < len(encoded); i += 76 {
			end := min(i+76, len(encoded))
			if _, err := attPart.Write([]byte(encoded[i:end] + "\r\n")); err != nil {
				return "", err
			}
		}
	}

	if err := writer.Close(); err != nil {
		return "", err
	}
	buf.Write(body.Bytes())
	return buf.String(), nil
}

// sanitizeHeader strips line breaks to prevent header injection.
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"vsireport/internal/config"
)

// Mailer delivers the rendered report over SMTP, optionally with the
// workbook attached.
type Mailer struct {
	cfg config.SMTPConfig
}

// NewMailer validates the SMTP configuration and returns a mailer.
func NewMailer(cfg config.SMTPConfig) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid smtp config: %w", err)
	}
	return &Mailer{cfg: cfg}, nil
}

// Send dispatches one HTML message to the configured recipient list. When
// attachmentPath is non-empty the file is attached base64-encoded.
func (m *Mailer) Send(subject, htmlBody, attachmentPath string) error {
	msg, err := m.build(subject, htmlBody, attachmentPath)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, m.cfg.To, msg); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}

func (m *Mailer) build(subject, htmlBody, attachmentPath string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(m.cfg.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	if attachmentPath == "" {
		buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		buf.WriteString(htmlBody)
		return buf.Bytes(), nil
	}

	const boundary = "vsireport-mixed"
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	buf.WriteString(htmlBody)
	buf.WriteString("\r\n")

	payload, err := os.ReadFile(attachmentPath)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	name := filepath.Base(attachmentPath)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: application/vnd.openxmlformats-officedocument.spreadsheetml.sheet\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", name)
	writeBase64(&buf, payload)
	fmt.Fprintf(&buf, "\r\n--%s--\r\n", boundary)

	return buf.Bytes(), nil
}

// writeBase64 encodes payload wrapped at the 76 columns MIME requires.
func writeBase64(buf *bytes.Buffer, payload []byte) {
	encoded := base64.StdEncoding.EncodeToString(payload)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
}

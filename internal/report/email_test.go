package report

import (
	"bytes"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undefinedlabs/go-mpatch"

	"vsireport/internal/config"
)

func safeUnpatch(patch *mpatch.Patch) {
	if err := patch.Unpatch(); err != nil {
		fmt.Fprintf(os.Stderr, "Error unpatching: %v\n", err)
	}
}

func smtpConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "mail.example.com",
		Port:     587,
		Username: "reporter",
		Password: "secret",
		From:     "reports@example.com",
		To:       []string{"ops@example.com", "mgmt@example.com"},
	}
}

func TestNewMailerRejectsInvalidConfig(t *testing.T) {
	cfg := smtpConfig()
	cfg.To = nil

	_, err := NewMailer(cfg)
	assert.Error(t, err)
}

func TestSendWithoutAttachment(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	patch, err := mpatch.PatchMethod(smtp.SendMail, func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotMsg = msg
		return nil
	})
	require.NoError(t, err)
	defer safeUnpatch(patch)

	mailer, err := NewMailer(smtpConfig())
	require.NoError(t, err)
	require.NoError(t, mailer.Send("Daily Provisioning Report", "<html><body>hi</body></html>", ""))

	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "reports@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com", "mgmt@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Daily Provisioning Report\r\n")
	assert.Contains(t, msg, "To: ops@example.com, mgmt@example.com\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.Contains(t, msg, "<html><body>hi</body></html>")
	assert.NotContains(t, msg, "multipart/mixed")
}

func TestSendWithAttachment(t *testing.T) {
	var gotMsg []byte

	patch, err := mpatch.PatchMethod(smtp.SendMail, func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = msg
		return nil
	})
	require.NoError(t, err)
	defer safeUnpatch(patch)

	path := filepath.Join(t.TempDir(), "daily05012021.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("workbook-bytes"), 0o644))

	mailer, err := NewMailer(smtpConfig())
	require.NoError(t, err)
	require.NoError(t, mailer.Send("Daily Provisioning Report", "<p>report</p>", path))

	msg := string(gotMsg)
	assert.Contains(t, msg, "Content-Type: multipart/mixed")
	assert.Contains(t, msg, "<p>report</p>")
	assert.Contains(t, msg, `Content-Disposition: attachment; filename="daily05012021.xlsx"`)
	assert.Contains(t, msg, "Content-Transfer-Encoding: base64")
	// Encoded payload for "workbook-bytes".
	assert.Contains(t, msg, "d29ya2Jvb2stYnl0ZXM=")
	assert.True(t, strings.HasSuffix(msg, "--\r\n"))
}

func TestSendMissingAttachmentFails(t *testing.T) {
	called := false
	patch, err := mpatch.PatchMethod(smtp.SendMail, func(_ string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	defer safeUnpatch(patch)

	mailer, err := NewMailer(smtpConfig())
	require.NoError(t, err)

	err = mailer.Send("subject", "<p>body</p>", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
	assert.False(t, called, "nothing should be sent when the attachment is unreadable")
}

func TestWriteBase64WrapsAt76Columns(t *testing.T) {
	var buf bytes.Buffer
	writeBase64(&buf, make([]byte, 100))

	for _, line := range strings.Split(buf.String(), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}

package mailer

import (
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(cfg Config) *Client {
	return New(cfg, zerolog.New(io.Discard))
}

func TestEnabledRequiresCredentials(t *testing.T) {
	assert.True(t, newTestClient(Config{Enabled: true, Username: "u", Password: "p"}).Enabled())
	assert.False(t, newTestClient(Config{Enabled: false, Username: "u", Password: "p"}).Enabled())
	assert.False(t, newTestClient(Config{Enabled: true, Username: "u"}).Enabled())
	assert.False(t, newTestClient(Config{Enabled: true, Password: "p"}).Enabled())
}

func TestBuildMessageHeadersAndBody(t *testing.T) {
	client := newTestClient(Config{
		Enabled:  true,
		Username: "relay@example.com",
		Password: "secret",
		To:       []string{"a@example.com", "b@example.com"},
	})

	msg := client.buildMessage("relay@example.com", "New message: Contact", "<b>Email:</b> a@b.com\n<b>Message:</b> hi\n")

	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)

	assert.Contains(t, headers, "From: relay@example.com\r\n")
	assert.Contains(t, headers, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, headers, "Subject: New message: Contact\r\n")
	assert.Contains(t, headers, "Content-Type: text/html; charset=\"UTF-8\"\r\n")

	assert.Contains(t, body, "<b>Email:</b> a@b.com<br>")
	assert.NotContains(t, body, "\n<b>Message", "newlines are rendered as <br>")
}

func TestBuildMessageSanitizesMarkup(t *testing.T) {
	client := newTestClient(Config{Enabled: true, Username: "u", Password: "p", To: []string{"a@example.com"}})

	msg := client.buildMessage("u", "s", "<b>Comment:</b> <script>alert(1)</script>hello\n")

	assert.NotContains(t, msg, "<script>")
	assert.Contains(t, msg, "hello")
	assert.Contains(t, msg, "<b>Comment:</b>", "formatting markup survives sanitization")
}

func TestSendRequiresRecipients(t *testing.T) {
	client := newTestClient(Config{Enabled: true, Username: "u", Password: "p"})

	err := client.Send("subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipients")
}

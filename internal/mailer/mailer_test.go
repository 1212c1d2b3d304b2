package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iga-community/internal/logging"
)

func TestLogMailerWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.NewWithWriter(&buf, "info", "json"), "hello@intl-girls-academy.org")

	err := m.Send(context.Background(), Message{
		To:      "ada@example.org",
		Subject: "Reset your password",
		Body:    "https://example.org/reset-password?token=abc",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"to":"ada@example.org"`)
	assert.Contains(t, out, "reset-password?token=abc")
	assert.Contains(t, out, `"from":"hello@intl-girls-academy.org"`)
}

func TestLogMailerRequiresRecipient(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.NewWithWriter(&buf, "info", "json"), "")
	assert.Error(t, m.Send(context.Background(), Message{Subject: "x"}))
	assert.Empty(t, buf.String())
}

package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/custor/portal-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewFallsBackToLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := New(config.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587}, zap.New(core))

	require.IsType(t, &LogMailer{}, m)

	link := "http://localhost:4200/reset-password?token=abc"
	require.NoError(t, m.SendPasswordReset(context.Background(), "a@example.com", link, 30*time.Minute))

	entries := logs.FilterField(zap.String("reset_link", link)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@example.com", entries[0].ContextMap()["to"])
}

func TestNewUsesSMTPWhenConfigured(t *testing.T) {
	m := New(config.EmailConfig{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		Username: "user",
		Password: "pass",
		FromName: "Portal",
	}, zap.NewNop())

	smtp, ok := m.(*SMTPMailer)
	require.True(t, ok)
	assert.Equal(t, "user", smtp.from)
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	m := New(config.EmailConfig{SMTPHost: "127.0.0.1", SMTPPort: 1, Username: "u", Password: "p"}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendPasswordReset(ctx, "a@example.com", "http://x", time.Minute), context.Canceled)
}

func TestResetEmailHTMLEscapesLink(t *testing.T) {
	body := resetEmailHTML(`http://x/?token=a"b&c=d`, 30*time.Minute)
	assert.Contains(t, body, "token=a&#34;b&amp;c=d")
	assert.Contains(t, body, "expire in 30 minutes")
}

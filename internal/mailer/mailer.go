// Package mailer delivers password reset emails.
package mailer

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/custor/portal-api/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends the portal's outbound email.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetLink string, validFor time.Duration) error
}

// New returns an SMTP mailer when credentials are configured and a mailer that
// only logs the link otherwise.
func New(cfg config.EmailConfig, logger *zap.Logger) Mailer {
	if cfg.Username == "" || cfg.Password == "" {
		logger.Warn("SMTP credentials not configured, reset links will be logged")
		return &LogMailer{logger: logger}
	}

	from := cfg.FromEmail
	if from == "" {
		from = cfg.Username
	}

	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:     from,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

// SMTPMailer sends HTML email through gomail.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	logger   *zap.Logger
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetLink string, validFor time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.from, m.fromName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset - "+m.fromName)
	msg.SetBody("text/html", resetEmailHTML(resetLink, validFor))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	m.logger.Info("password reset email sent", zap.String("to", to))
	return nil
}

// LogMailer writes the reset link to the log instead of sending it.
type LogMailer struct {
	logger *zap.Logger
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, resetLink string, _ time.Duration) error {
	m.logger.Info("password reset email not sent, SMTP disabled",
		zap.String("to", to),
		zap.String("reset_link", resetLink),
	)
	return nil
}

func resetEmailHTML(link string, validFor time.Duration) string {
	escaped := html.EscapeString(link)
	return fmt.Sprintf(`<html>
<body>
	<h2>Password Reset Request</h2>
	<p>You requested a password reset for your portal account.</p>
	<p><a href="%[1]s" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Reset Password</a></p>
	<p>Or copy and paste this link in your browser:</p>
	<p>%[1]s</p>
	<p><strong>This link will expire in %[2]d minutes.</strong></p>
	<p>If you didn't request this reset, please ignore this email.</p>
</body>
</html>`, escaped, int(validFor.Minutes()))
}

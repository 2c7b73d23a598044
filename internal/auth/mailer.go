package auth

import (
	"context"
	"log/slog"
)

// Mailer delivers magic-link emails. The auth provider integration is
// behind this interface so the service can run without an email vendor.
type Mailer interface {
	SendMagicLink(ctx context.Context, email, link string) error
}

// LogMailer writes magic links to the log instead of sending email.
// Used in development and tests.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendMagicLink logs the magic link for the operator to copy.
func (m *LogMailer) SendMagicLink(ctx context.Context, email, link string) error {
	m.logger.Info("magic link issued",
		slog.String("email", email),
		slog.String("link", link),
	)
	return nil
}

package auth

import (
	"context"
	"log"
)

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// LogMailer writes reset links to the process log instead of sending email.
type LogMailer struct{}

// SendPasswordReset logs the reset link.
func (LogMailer) SendPasswordReset(_ context.Context, email, link string) error {
	log.Printf("[auth] Password reset requested for %s: %s", email, link)
	return nil
}

// Package email sends transactional mail through Resend.
//
// DELIVERY POLICY:
// Every send here is best-effort from the caller's point of view — the
// auth service logs failures and never lets a broken mail transport fail
// the mutation that triggered the email. This package just does the
// sending; that policy lives with the callers.
//
// DEV MODE:
// With no API key or in dev mode, sends are logged instead of delivered.
// This keeps local development and CI free of external calls while still
// exercising the full code path up to the transport.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Service sends application email through the Resend API.
type Service struct {
	client      *resend.Client
	from        string
	frontendURL string
	logger      *slog.Logger
	dev         bool
}

// New creates an email Service. An empty apiKey (or dev=true) produces a
// logging-only service.
func New(apiKey, from, frontendURL string, dev bool, logger *slog.Logger) *Service {
	var client *resend.Client
	if apiKey != "" && !dev {
		client = resend.NewClient(apiKey)
	}

	return &Service{
		client:      client,
		from:        from,
		frontendURL: frontendURL,
		logger:      logger,
		dev:         dev,
	}
}

// SendWelcome greets a newly registered user.
func (s *Service) SendWelcome(ctx context.Context, to, username string) error {
	subject, body := welcomeTemplate(username, s.frontendURL)
	return s.send(ctx, "welcome", to, subject, body, "")
}

// SendPasswordReset mails the reset link embedding the single-use token.
func (s *Service) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	subject, body := passwordResetTemplate(link)
	return s.send(ctx, "password_reset", to, subject, body, "")
}

// SendPasswordResetConfirmation notifies the user their password changed.
func (s *Service) SendPasswordResetConfirmation(ctx context.Context, to, username string) error {
	subject, body := passwordResetConfirmationTemplate(username)
	return s.send(ctx, "password_reset_confirmation", to, subject, body, "")
}

// SendContact forwards a contact-form submission to the fixed recipient.
// replyTo carries the submitter's address so the team can answer directly.
func (s *Service) SendContact(ctx context.Context, recipient, name, replyTo, subject, message string) error {
	mailSubject, body := contactTemplate(name, replyTo, subject, message)
	return s.send(ctx, "contact", recipient, mailSubject, body, replyTo)
}

// send is the single funnel to the transport.
func (s *Service) send(ctx context.Context, kind, to, subject, body, replyTo string) error {
	if s.dev || s.client == nil {
		s.logger.Info("email sent (dev mode)",
			slog.String("type", kind),
			slog.String("to", to),
			slog.String("subject", subject),
		)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	if replyTo != "" {
		params.ReplyTo = replyTo
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("email: sending %s mail: %w", kind, err)
	}

	s.logger.Info("email sent", slog.String("type", kind), slog.String("to", to))
	return nil
}

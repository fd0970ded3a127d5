// Package service — contact form business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippets-api/internal/apperror"
	"github.com/sakif/snippets-api/internal/validation"
)

// Contact form limits.
const (
	MaxContactNameLength    = 100
	MaxContactSubjectLength = 200
)

// ContactSender is the single email method ContactService needs.
type ContactSender interface {
	SendContact(ctx context.Context, recipient, name, replyTo, subject, message string) error
}

// ContactService validates contact-form submissions and forwards them by
// email to the site operator.
type ContactService struct {
	mailer    ContactSender
	recipient string // CONTACT_EMAIL, the operator's inbox
	logger    *slog.Logger
}

func NewContactService(mailer ContactSender, recipient string, logger *slog.Logger) *ContactService {
	return &ContactService{
		mailer:    mailer,
		recipient: recipient,
		logger:    logger,
	}
}

// Submit validates the form and sends it.
//
// Unlike most flows, a transport failure here IS the caller's problem: the
// whole point of the endpoint is delivering the message, so a send error
// comes back as an internal error instead of being swallowed.
func (s *ContactService) Submit(ctx context.Context, name, email, subject, message string) error {
	fields := map[string]string{}

	name = strings.TrimSpace(name)
	subject = strings.TrimSpace(subject)

	switch {
	case name == "":
		fields["name"] = "Name is required"
	case len(name) > MaxContactNameLength:
		fields["name"] = fmt.Sprintf("Name must be %d characters or less", MaxContactNameLength)
	case containsLineBreak(name):
		// CR/LF in a value that ends up in a mail header is a header
		// injection vector.
		fields["name"] = "Name must not contain line breaks"
	}

	switch {
	case subject == "":
		fields["subject"] = "Subject is required"
	case len(subject) > MaxContactSubjectLength:
		fields["subject"] = fmt.Sprintf("Subject must be %d characters or less", MaxContactSubjectLength)
	case containsLineBreak(subject):
		fields["subject"] = "Subject must not contain line breaks"
	}

	if err := validation.Email(email); err != nil {
		fields["email"] = err.Error()
	}
	if strings.TrimSpace(message) == "" {
		fields["message"] = "Message is required"
	}

	if len(fields) > 0 {
		return apperror.ValidationFields(fields)
	}

	if err := s.mailer.SendContact(ctx, s.recipient, name, email, subject, message); err != nil {
		s.logger.Error("contact email failed", slog.String("error", err.Error()))
		return apperror.Internal("Failed to send your message. Please try again later.")
	}

	s.logger.Info("contact message sent", slog.String("subject", subject))
	return nil
}

func containsLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

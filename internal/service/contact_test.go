package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/snippets-api/internal/apperror"
)

type recordingContactSender struct {
	sent []sentContact
	err  error
}

type sentContact struct {
	recipient, name, replyTo, subject, message string
}

func (m *recordingContactSender) SendContact(_ context.Context, recipient, name, replyTo, subject, message string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentContact{recipient, name, replyTo, subject, message})
	return nil
}

func newTestContactService(t *testing.T) (*ContactService, *recordingContactSender) {
	t.Helper()
	mailer := &recordingContactSender{}
	svc := NewContactService(mailer, "ops@example.com", testLogger())
	return svc, mailer
}

func TestContactSubmit_Success(t *testing.T) {
	svc, mailer := newTestContactService(t)

	err := svc.Submit(context.Background(), "Alice", "alice@example.com", "Feedback", "Great site!")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailer.sent))
	}
	got := mailer.sent[0]
	if got.recipient != "ops@example.com" {
		t.Errorf("recipient = %q, want the operator inbox", got.recipient)
	}
	if got.replyTo != "alice@example.com" {
		t.Errorf("replyTo = %q, want the submitter's address", got.replyTo)
	}
}

func TestContactSubmit_FieldValidation(t *testing.T) {
	svc, mailer := newTestContactService(t)

	cases := []struct {
		testName                     string
		name, email, subject, msg    string
		wantField                    string
	}{
		{"blank name", "", "a@example.com", "Hi", "body", "name"},
		{"blank subject", "Alice", "a@example.com", "", "body", "subject"},
		{"blank message", "Alice", "a@example.com", "Hi", "  ", "message"},
		{"bad email", "Alice", "nope", "Hi", "body", "email"},
		{"name too long", strings.Repeat("a", MaxContactNameLength+1), "a@example.com", "Hi", "body", "name"},
		{"subject too long", "Alice", "a@example.com", strings.Repeat("s", MaxContactSubjectLength+1), "body", "subject"},
	}

	for _, c := range cases {
		t.Run(c.testName, func(t *testing.T) {
			err := svc.Submit(context.Background(), c.name, c.email, c.subject, c.msg)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				if _, ok := appErr.FieldErrors()[c.wantField]; !ok {
					t.Errorf("fields = %v, missing %q", appErr.FieldErrors(), c.wantField)
				}
			}
		})
	}

	if len(mailer.sent) != 0 {
		t.Errorf("invalid submissions must not send mail, sent %d", len(mailer.sent))
	}
}

// TestContactSubmit_HeaderInjection: CR or LF in a value that lands in a
// mail header could smuggle extra headers into the outgoing message.
func TestContactSubmit_HeaderInjection(t *testing.T) {
	svc, mailer := newTestContactService(t)

	cases := []struct{ name, subject string }{
		{"Alice\r\nBcc: victim@example.com", "Hi"},
		{"Alice", "Hi\nX-Spam: yes"},
	}
	for _, c := range cases {
		err := svc.Submit(context.Background(), c.name, "a@example.com", c.subject, "body")
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Submit(%q, %q) error = %v, want ErrValidation", c.name, c.subject, err)
		}
	}
	if len(mailer.sent) != 0 {
		t.Error("injection attempts must not send mail")
	}
}

func TestContactSubmit_TransportFailure(t *testing.T) {
	svc, mailer := newTestContactService(t)
	mailer.err = errors.New("resend unavailable")

	err := svc.Submit(context.Background(), "Alice", "alice@example.com", "Hi", "body")
	if !errors.Is(err, apperror.ErrInternal) {
		t.Errorf("error = %v, want ErrInternal", err)
	}
}

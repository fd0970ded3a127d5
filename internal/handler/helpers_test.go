package handler_test

// Shared fixtures for the handler tests.
//
// HANDLER TEST STRATEGY:
// The handlers take concrete service structs, so these tests wire the real
// services over an in-memory SQLite database. That exercises the full
// request path (JSON decoding → service rules → repository → response
// shape) without a running server: each test calls the handler method
// directly with httptest.
//
// Email goes through the dev-mode transport, which logs instead of
// sending, so no test touches the network.

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sakif/snippets-api/internal/auth"
	"github.com/sakif/snippets-api/internal/email"
	"github.com/sakif/snippets-api/internal/handler"
	"github.com/sakif/snippets-api/internal/highlight"
	"github.com/sakif/snippets-api/internal/model"
	"github.com/sakif/snippets-api/internal/repository/sqlite"
	"github.com/sakif/snippets-api/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testPassword satisfies the strength policy and avoids the common-pattern
// blocklist.
const testPassword = "orchid-battery-42"

type testEnv struct {
	authSvc    *service.AuthService
	snippetSvc *service.SnippetService

	auth     *handler.AuthHandler
	snippets *handler.SnippetHandler
	users    *handler.UserHandler
	contact  *handler.ContactHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := testLogger()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789abcdef")
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)
	mailer := email.New("", "noreply@example.com", "http://localhost:3000", true, logger)

	authSvc := service.NewAuthService(db, db, tokens, passwords, mailer, logger)
	snippetSvc := service.NewSnippetService(db, highlight.New(), logger)
	contactSvc := service.NewContactService(mailer, "team@example.com", logger)

	return &testEnv{
		authSvc:    authSvc,
		snippetSvc: snippetSvc,
		auth:       handler.NewAuthHandler(authSvc, logger),
		snippets:   handler.NewSnippetHandler(snippetSvc, logger),
		users:      handler.NewUserHandler(authSvc, logger),
		contact:    handler.NewContactHandler(contactSvc, logger),
	}
}

// registerUser creates an account through the service layer so tests can
// focus their HTTP assertions on the endpoint under test.
func (e *testEnv) registerUser(t *testing.T, username string) *model.User {
	t.Helper()

	user, err := e.authSvc.Register(context.Background(), service.RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  testPassword,
		Password2: testPassword,
	})
	if err != nil {
		t.Fatalf("registering user %q: %v", username, err)
	}
	return user
}

// createSnippet saves a snippet through the service layer.
func (e *testEnv) createSnippet(t *testing.T, ownerID, title string) *model.Snippet {
	t.Helper()

	snippet, err := e.snippetSvc.Create(context.Background(), ownerID, service.CreateSnippetInput{
		Title: title,
		Code:  "print('hi')",
	})
	if err != nil {
		t.Fatalf("creating snippet %q: %v", title, err)
	}
	return snippet
}

// newRequest builds a JSON request. An empty userID means anonymous;
// otherwise the identity is injected into the context the same way the
// auth middleware would.
func newRequest(method, target, body, userID string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		r = r.WithContext(auth.WithUserID(r.Context(), userID))
	}
	return r
}

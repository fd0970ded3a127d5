// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/sakif/snippets-api/internal/model"
)

// ListOptions carries pagination for any listing query.
type ListOptions struct {
	Limit  int
	Offset int
}

// SnippetFilter restricts a snippet listing. Zero values mean "no
// restriction"; set fields compose with logical AND.
//
// OwnerID implements the visibility rule: the service sets it to the
// requesting user's ID for authenticated calls and leaves it empty for
// anonymous ones (who see everything).
type SnippetFilter struct {
	OwnerID       string     // "" = all owners
	Language      string     // exact match, case-insensitive
	CreatedAfter  *time.Time // inclusive lower bound on creation time
	CreatedBefore *time.Time // inclusive upper bound on creation time
	SearchTitle   string     // case-insensitive substring on title
	SearchCode    string     // case-insensitive substring on code
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, filter SnippetFilter, opts ListOptions) ([]model.Snippet, error)
	Count(ctx context.Context, filter SnippetFilter) (int, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, error)
	CountUsers(ctx context.Context) (int, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// TokenRepository stores single-use password-reset tokens.
type TokenRepository interface {
	CreateToken(ctx context.Context, token *model.ResetToken) error
	// ConsumeToken atomically marks the token used and returns it. A token
	// that is unknown, expired, or already consumed yields ErrNotFound —
	// indistinguishable on purpose.
	ConsumeToken(ctx context.Context, value string) (*model.ResetToken, error)
	// DeleteUnusedTokens invalidates any outstanding tokens for a user,
	// called before issuing a fresh one.
	DeleteUnusedTokens(ctx context.Context, userID string) error
}

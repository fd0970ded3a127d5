// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
// In a well-structured Go web app, code is organised into three layers:
//
//	Handler (HTTP layer)    → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer) → reads/writes to the database
//
// WHY A SEPARATE SERVICE LAYER?
// Without a service layer, handlers do everything: parse HTTP, validate data,
// call the database, format responses. This creates several problems:
//
//  1. TESTING: To test business logic, you'd need to create HTTP requests.
//     With a service layer, you test business logic with plain Go function calls.
//
//  2. REUSE: What if you need the same logic in a CLI tool or a background job?
//     Handlers are tied to HTTP. Services are not.
//
//  3. SEPARATION: Handlers should only know about HTTP (status codes, headers, JSON).
//     Services should only know about business rules (validation, permissions).
//     Neither should know about SQL or database details.
//
// THE DEPENDENCY CHAIN:
//
//	main.go creates:  DB → Repository → Service → Handler
//	At runtime:       Handler calls Service calls Repository calls DB
//
// DEPENDENCY INJECTION:
// Notice that SnippetService takes a repository.SnippetRepository (interface),
// NOT a *sqlite.DB (concrete type). This is called "programming to an interface."
//
// Benefits:
// - TESTING: In tests, we pass a mock repository (see snippet_test.go)
// - FLEXIBILITY: Swap SQLite for Postgres by changing one line in main.go
// - DECOUPLING: The service doesn't import the sqlite package at all
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippets-api/internal/apperror"
	"github.com/sakif/snippets-api/internal/model"
	"github.com/sakif/snippets-api/internal/repository"
)

// Validation constants.
// Defining these as constants (not magic numbers in code) makes them:
// - Easy to find and change
// - Self-documenting (the name explains the purpose)
// - Referenceable in error messages
const (
	MaxTitleLength  = 100
	MaxCodeLength   = 100000 // ~100KB of code
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Highlighter renders code to HTML and reports which languages and styles
// it can handle. The interface lives here (the consumer), not in the
// highlight package — the service only needs these three methods.
type Highlighter interface {
	SupportedLanguage(language string) bool
	SupportedStyle(style string) bool
	Render(code, language, style string, linenos bool) (string, error)
}

// SnippetService handles business logic for code snippets: validation,
// ownership, and keeping the derived highlighted HTML in sync with the
// source fields.
type SnippetService struct {
	repo   repository.SnippetRepository
	hl     Highlighter
	logger *slog.Logger
}

// NewSnippetService creates a new SnippetService.
//
// CONSTRUCTOR PATTERN IN GO:
// Go doesn't have constructors like Java/Python. Instead, we use "New" functions.
// Convention: NewXxx returns *Xxx and takes all dependencies as parameters.
//
// This is where dependency injection happens — the caller decides WHICH
// repository implementation to use (SQLite, Postgres, mock for tests).
func NewSnippetService(repo repository.SnippetRepository, hl Highlighter, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		hl:     hl,
		logger: logger,
	}
}

// CreateSnippetInput carries the client-settable snippet fields. Ownership
// is NOT here on purpose: the owner is always the authenticated requester,
// never something the request body can choose.
type CreateSnippetInput struct {
	Title    string
	Code     string
	Language string
	Style    string
	LineNos  bool
}

// UpdateSnippetInput uses pointers so PATCH can distinguish "field absent"
// (nil → keep the current value) from "field set to its zero value".
// The PUT handler sets every pointer; the PATCH handler sets only the keys
// present in the request body.
type UpdateSnippetInput struct {
	Title    *string
	Code     *string
	Language *string
	Style    *string
	LineNos  *bool
}

// Create validates and saves a new snippet owned by ownerID.
//
// Defaults are applied here (language "python", style "friendly") so every
// caller gets the same behavior, and the highlighted HTML is rendered
// before the insert — reads never run the highlighter.
func (s *SnippetService) Create(ctx context.Context, ownerID string, in CreateSnippetInput) (*model.Snippet, error) {
	if ownerID == "" {
		return nil, apperror.Unauthorized("Authentication required.")
	}

	snippet := &model.Snippet{
		OwnerID:  ownerID,
		Title:    strings.TrimSpace(in.Title),
		Code:     in.Code,
		Language: in.Language,
		Style:    in.Style,
		LineNos:  in.LineNos,
	}
	if err := s.validateAndRender(snippet); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("ownerID", ownerID),
		slog.String("language", snippet.Language),
	)

	return snippet, nil
}

// Get retrieves a snippet, applying the visibility rule.
//
// THE MASKING RULE:
// An anonymous requester (requesterID == "") may read any snippet. An
// authenticated requester may only read their own — someone else's snippet
// comes back as NotFound, never Forbidden. Leaking "exists but not yours"
// would confirm the snippet's existence to a non-owner.
func (s *SnippetService) Get(ctx context.Context, requesterID, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.NotFound("snippet", id)
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && snippet.OwnerID != requesterID {
		return nil, apperror.NotFound("snippet", id)
	}

	return snippet, nil
}

// List retrieves snippets matching the filter, with the visibility rule
// baked in: an authenticated requester sees only their own snippets, an
// anonymous one sees everything. Returns the page plus the total count for
// the pagination envelope.
func (s *SnippetService) List(ctx context.Context, requesterID string, filter repository.SnippetFilter, limit, offset int) ([]model.Snippet, int, error) {
	filter.OwnerID = requesterID

	limit = clampPageSize(limit)
	if offset < 0 {
		offset = 0
	}

	snippets, err := s.repo.List(ctx, filter, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("listing snippets: %w", err)
	}

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("failed to count snippets", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("counting snippets: %w", err)
	}

	return snippets, count, nil
}

// Update modifies an existing snippet. Owner-only: a non-owner gets the
// same NotFound as a missing snippet (see Get). Any change to code,
// language, style, or linenos re-renders the stored HTML.
//
// STRATEGY: "Fetch then update"
// 1. Fetch the existing snippet (confirms it exists AND checks ownership)
// 2. Apply changes to the fetched copy
// 3. Validate and save the updated version
func (s *SnippetService) Update(ctx context.Context, requesterID, id string, in UpdateSnippetInput) (*model.Snippet, error) {
	if requesterID == "" {
		return nil, apperror.Unauthorized("Authentication required.")
	}

	snippet, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if snippet.OwnerID != requesterID {
		return nil, apperror.NotFound("snippet", id)
	}

	if in.Title != nil {
		snippet.Title = strings.TrimSpace(*in.Title)
	}
	if in.Code != nil {
		snippet.Code = *in.Code
	}
	if in.Language != nil {
		snippet.Language = *in.Language
	}
	if in.Style != nil {
		snippet.Style = *in.Style
	}
	if in.LineNos != nil {
		snippet.LineNos = *in.LineNos
	}

	if err := s.validateAndRender(snippet); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", snippet.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", snippet.ID))

	return snippet, nil
}

// Delete removes a snippet. Owner-only, with the same masking as Get.
func (s *SnippetService) Delete(ctx context.Context, requesterID, id string) error {
	if requesterID == "" {
		return apperror.Unauthorized("Authentication required.")
	}

	snippet, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if snippet.OwnerID != requesterID {
		return apperror.NotFound("snippet", id)
	}

	if err := s.repo.Delete(ctx, snippet.ID); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", snippet.ID))
	return nil
}

// Highlight returns the stored highlighted HTML for a snippet, subject to
// the same visibility rule as Get. The HTML is byte-identical across calls
// until the snippet changes, because it is rendered at write time.
func (s *SnippetService) Highlight(ctx context.Context, requesterID, id string) (string, error) {
	snippet, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return "", err
	}
	return snippet.Highlighted, nil
}

// validateAndRender enforces the snippet field rules, applies rendering
// defaults, and recomputes the derived HTML. Shared by Create and Update so
// the two paths can never drift.
func (s *SnippetService) validateAndRender(snippet *model.Snippet) error {
	if strings.TrimSpace(snippet.Code) == "" {
		return apperror.ValidationFailed("code", "Code may not be blank")
	}
	if len(snippet.Code) > MaxCodeLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("Code must be %d characters or less", MaxCodeLength))
	}
	if len(snippet.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("Title must be %d characters or less", MaxTitleLength))
	}

	if snippet.Language == "" {
		snippet.Language = model.DefaultLanguage
	}
	snippet.Language = strings.ToLower(strings.TrimSpace(snippet.Language))
	if !s.hl.SupportedLanguage(snippet.Language) {
		return apperror.ValidationFailed("language",
			fmt.Sprintf("%q is not a supported language", snippet.Language))
	}

	if snippet.Style == "" {
		snippet.Style = model.DefaultStyle
	}
	snippet.Style = strings.ToLower(strings.TrimSpace(snippet.Style))
	if !s.hl.SupportedStyle(snippet.Style) {
		return apperror.ValidationFailed("style",
			fmt.Sprintf("%q is not a supported style", snippet.Style))
	}

	html, err := s.hl.Render(snippet.Code, snippet.Language, snippet.Style, snippet.LineNos)
	if err != nil {
		s.logger.Error("failed to render snippet",
			slog.String("language", snippet.Language),
			slog.String("error", err.Error()),
		)
		return apperror.Internal("could not render snippet")
	}
	snippet.Highlighted = html

	return nil
}

// clampPageSize applies the page-size policy shared by every listing:
// zero, negative, or absent falls back to the default; oversized requests
// are capped rather than rejected.
func clampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

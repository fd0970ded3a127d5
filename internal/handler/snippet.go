package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/snippets-api/internal/apperror"
	"github.com/sakif/snippets-api/internal/auth"
	"github.com/sakif/snippets-api/internal/repository"
	"github.com/sakif/snippets-api/internal/service"
)

// SnippetHandler manages CRUD operations for code snippets.
//
// WHY A SEPARATE HANDLER?
// Separating snippet endpoints from auth endpoints follows the Single
// Responsibility Principle. Each handler struct "owns" one area of
// functionality. This makes code easier to:
// - Test (mock dependencies independently)
// - Understand (find all snippet logic in one place)
// - Modify (change snippet behavior without touching auth)
type SnippetHandler struct {
	svc    *service.SnippetService
	logger *slog.Logger
}

// NewSnippetHandler creates a new SnippetHandler.
func NewSnippetHandler(svc *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{svc: svc, logger: logger}
}

// snippetRequest is the JSON body for create and update. Every field is a
// pointer so PATCH can tell "absent" apart from "set to zero value".
type snippetRequest struct {
	Title    *string `json:"title"`
	Code     *string `json:"code"`
	Language *string `json:"language"`
	Style    *string `json:"style"`
	LineNos  *bool   `json:"linenos"`
}

// HandleList returns a page of snippets.
//
// HTTP: GET /snippets/
//
// An authenticated caller sees only their own snippets; an anonymous
// caller sees everyone's. Query params: language, created_after,
// created_before, search_title, search_code, page, page_size. The response
// is the standard envelope {count, next, previous, results}.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	filter, err := parseSnippetFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	page, pageSize := parsePagination(r)

	snippets, count, err := h.svc.List(r.Context(), requesterID, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newPageEnvelope(r, count, page, pageSize, snippets))
}

// HandleCreate saves a new snippet owned by the authenticated caller.
//
// HTTP: POST /snippets/
// REQUEST BODY: {"title": "...", "code": "...", "language": "python",
// "style": "friendly", "linenos": false}
//
// The owner always comes from the JWT, never from the body.
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	var req snippetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snippet, err := h.svc.Create(r.Context(), requesterID, service.CreateSnippetInput{
		Title:    strVal(req.Title),
		Code:     strVal(req.Code),
		Language: strVal(req.Language),
		Style:    strVal(req.Style),
		LineNos:  boolVal(req.LineNos),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// HandleGet returns one snippet.
//
// HTTP: GET /snippets/{id}/
//
// Someone else's snippet 404s for an authenticated caller — see the
// service's visibility rule.
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.svc.Get(r.Context(), requesterID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleUpdate fully replaces a snippet's client-settable fields.
//
// HTTP: PUT /snippets/{id}/
//
// PUT semantics: fields missing from the body reset to their defaults
// (empty title, default language/style, linenos off). Code is effectively
// required — resetting it to empty fails validation.
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	var req snippetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Every pointer is set: absent fields become their zero value and the
	// service applies the defaults from there.
	title := strVal(req.Title)
	code := strVal(req.Code)
	language := strVal(req.Language)
	style := strVal(req.Style)
	linenos := boolVal(req.LineNos)

	snippet, err := h.svc.Update(r.Context(), requesterID, r.PathValue("id"), service.UpdateSnippetInput{
		Title:    &title,
		Code:     &code,
		Language: &language,
		Style:    &style,
		LineNos:  &linenos,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandlePartialUpdate merges the provided fields into the snippet.
//
// HTTP: PATCH /snippets/{id}/
//
// PATCH semantics: only keys present in the body change; nil pointers pass
// straight through to the service meaning "keep the current value".
func (h *SnippetHandler) HandlePartialUpdate(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	var req snippetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snippet, err := h.svc.Update(r.Context(), requesterID, r.PathValue("id"), service.UpdateSnippetInput{
		Title:    req.Title,
		Code:     req.Code,
		Language: req.Language,
		Style:    req.Style,
		LineNos:  req.LineNos,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet.
//
// HTTP: DELETE /snippets/{id}/
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), requesterID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleHighlight serves the pre-rendered HTML for a snippet.
//
// HTTP: GET /snippets/{id}/highlight/
//
// Responds with text/html, not JSON — the page is meant to be opened in a
// browser. The bytes are identical across calls until the snippet changes
// because rendering happens at write time.
func (h *SnippetHandler) HandleHighlight(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	html, err := h.svc.Highlight(r.Context(), requesterID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		h.logger.Error("failed to write highlight response", slog.String("error", err.Error()))
	}
}

// parseSnippetFilter reads the filter query params. A malformed timestamp
// is the one thing that errors; everything else is optional free text.
func parseSnippetFilter(r *http.Request) (repository.SnippetFilter, error) {
	q := r.URL.Query()

	filter := repository.SnippetFilter{
		Language:    q.Get("language"),
		SearchTitle: q.Get("search_title"),
		SearchCode:  q.Get("search_code"),
	}

	if raw := q.Get("created_after"); raw != "" {
		t, err := parseFilterTime(raw)
		if err != nil {
			return filter, apperror.ValidationFailed("created_after",
				"Must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		}
		filter.CreatedAfter = &t
	}
	if raw := q.Get("created_before"); raw != "" {
		t, err := parseFilterTime(raw)
		if err != nil {
			return filter, apperror.ValidationFailed("created_before",
				"Must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		}
		filter.CreatedBefore = &t
	}

	return filter, nil
}

// parseFilterTime accepts a full RFC 3339 timestamp or a bare date.
func parseFilterTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolVal(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

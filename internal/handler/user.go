package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/snippets-api/internal/service"
)

// UserHandler serves the user directory. Both endpoints require
// authentication — the directory is not public.
type UserHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

func NewUserHandler(svc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// HandleList returns a page of users.
//
// HTTP: GET /users/
//
// Same envelope as the snippet listing: {count, next, previous, results}.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	users, count, err := h.svc.ListUsers(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newPageEnvelope(r, count, page, pageSize, users))
}

// HandleGet returns one user by ID.
//
// HTTP: GET /users/{id}/
//
// A garbage or unknown ID is a plain 404.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

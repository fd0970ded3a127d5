package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/snippets-api/internal/service"
)

// ContactHandler accepts contact-form submissions. No auth — anyone can
// write in.
type ContactHandler struct {
	svc    *service.ContactService
	logger *slog.Logger
}

func NewContactHandler(svc *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{svc: svc, logger: logger}
}

// HandleSubmit validates and forwards a contact message.
//
// HTTP: POST /contact/
// REQUEST BODY: {"name": "...", "email": "...", "subject": "...", "message": "..."}
// RESPONSE: 200 {"detail": "..."} | 400 field errors | 500 on transport failure
func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Submit(r.Context(), req.Name, req.Email, req.Subject, req.Message); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"detail": "Your message has been sent. Thank you for contacting us!",
	})
}

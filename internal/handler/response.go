package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// WHY HELPERS?
// Without helpers, every handler repeats the same boilerplate:
//   w.Header().Set("Content-Type", "application/json")
//   w.WriteHeader(statusCode)
//   json.NewEncoder(w).Encode(data)
//
// With helpers, handlers are cleaner and more consistent:
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err)
//
// ERROR SHAPES:
// The API uses three error shapes, chosen by the kind of failure:
//
//	{"error": "<message>"}                                  — single-message
//	  (bad credentials, missing token, malformed JSON)
//	{"error": "validation_error", "fields": {"email": "…"}} — field errors
//	{"error": "not_found", "message": "…"}                  — missing (or masked) resources
//
// The frontend branches on the "error" key and renders field errors next
// to their inputs.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/snippets-api/internal/apperror"
)

// errorResponse is the single-message shape.
type errorResponse struct {
	Error string `json:"error"`
}

// fieldErrorResponse carries per-field validation messages.
type fieldErrorResponse struct {
	Error  string            `json:"error"` // always "validation_error"
	Fields map[string]string `json:"fields"`
}

// notFoundResponse is used for 404s, masked or genuine.
type notFoundResponse struct {
	Error   string `json:"error"` // always "not_found"
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
// Any header changes after that are silently ignored.
//
// That's why we do:
//  1. w.Header().Set(...)     ← set headers
//  2. w.WriteHeader(status)   ← send status + headers
//  3. json.Encode(data)       ← send body
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// If encoding fails, the headers are already sent — we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status and shape.
//
// ERROR MAPPING:
// This is where domain errors (from the service layer) get translated to HTTP.
// The service layer returns apperror.ErrValidation, apperror.ErrNotFound, etc.
// This function maps those to 400, 404, etc.
//
// WHY HERE AND NOT IN THE SERVICE?
// The service layer should not know about HTTP status codes.
// Different consumers of the service might use different protocols:
// - HTTP handler: maps ErrNotFound → 404
// - gRPC handler: maps ErrNotFound → codes.NotFound
// - CLI tool: maps ErrNotFound → "Item not found" message
//
// errors.Is() walks the entire error chain (via Unwrap()) to find the
// sentinel, so wrapped errors from any layer still map correctly.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			// Field-scoped errors get the fields map; message-only
			// validation failures use the flat shape.
			if fields := appErr.FieldErrors(); fields != nil {
				writeJSON(w, http.StatusBadRequest, fieldErrorResponse{
					Error:  "validation_error",
					Fields: fields,
				})
			} else {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: appErr.Message})
			}
		case errors.Is(err, apperror.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: appErr.Message})
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, notFoundResponse{
				Error:   "not_found",
				Message: appErr.Message,
			})
		case errors.Is(err, apperror.ErrConflict):
			writeJSON(w, http.StatusConflict, errorResponse{Error: appErr.Message})
		case errors.Is(err, apperror.ErrInternal):
			// Internal AppErrors carry a client-safe message on purpose.
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: appErr.Message})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "An internal error occurred"})
		}
		return
	}

	// Unknown error — return a generic 500.
	// NEVER expose internal error details to the client: the raw message
	// might contain SQL, file paths, or other sensitive info.
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "An internal error occurred"})
}

// decodeJSON reads the request body into dst, rejecting malformed JSON
// with the flat 400 shape.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body."})
		return false
	}
	return true
}

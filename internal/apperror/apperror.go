package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// AppError is the domain error type shared by all layers.
//
// The Err field holds one of the sentinel errors above so callers can use
// errors.Is() to branch on the KIND of failure without string matching.
// Message carries the human-readable text that ultimately reaches the client.
//
// Validation errors are field-scoped: a single bad field sets Field, and
// multi-field failures (e.g. registration where both password fields are
// wrong) populate Fields. The HTTP layer renders whichever is present.
type AppError struct {
	Err     error             // sentinel cause
	Message string            // human-readable error message
	Field   string            // optional: single field causing the error
	Fields  map[string]string // optional: field name → message, for multi-field validation
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FieldErrors returns the field → message map for this error, folding a
// single Field into a one-entry map. Returns nil for non-field errors.
func (e *AppError) FieldErrors() map[string]string {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	if e.Field != "" {
		return map[string]string{e.Field: e.Message}
	}
	return nil
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Validation builds a message-only validation error, for failures that are
// not about one particular field (missing credentials, bad reset token).
// FieldErrors() returns nil for these, so the HTTP layer renders the flat
// {"error": message} shape.
func Validation(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// ValidationFields builds a validation error covering several fields at once.
// The registration flow uses this to report every bad field in one response
// instead of failing on the first.
func ValidationFields(fields map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Unauthorized returns an AppError for missing or invalid credentials.
// HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Internal wraps an unexpected failure. The message is what the client sees;
// the wrapped error stays in the logs only.
func Internal(message string) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: message,
	}
}

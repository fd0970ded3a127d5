package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/snippets-api/internal/auth"
	"github.com/sakif/snippets-api/internal/service"
)

// AuthHandler exposes login, registration, the password-reset round trip,
// and the caller's own profile.
//
// TOKEN TRANSPORT:
// Tokens travel in the JSON body on the way out and in the Authorization
// header ("Bearer <token>") on the way in. Nothing auth-related is stored
// server-side, so logout is a client concern — the endpoint exists for
// symmetry and always succeeds for an authenticated caller.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// HandleLogin checks credentials and issues a token pair.
//
// HTTP: POST /auth/login/
// REQUEST BODY: {"email": "...", "password": "..."}
// RESPONSE: {"access": "...", "refresh": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

// HandleRefresh exchanges a refresh token for a new access token.
//
// HTTP: POST /auth/login/refresh/
// REQUEST BODY: {"refresh": "..."}
// RESPONSE: {"access": "..."}
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	access, err := h.svc.Refresh(r.Context(), req.Refresh)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

// registerRequest mirrors the registration form. password2 is the
// confirmation input.
type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// HandleRegister creates an account.
//
// HTTP: POST /auth/register/
// RESPONSE: 201 {"message": "...", "user": {...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully.",
		"user":    user,
	})
}

// HandleLogout acknowledges a logout.
//
// HTTP: POST /auth/logout/ (auth required)
//
// JWTs are stateless — there is nothing to revoke server-side. The client
// discards its tokens; this endpoint just confirms the intent.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		h.logger.Info("user logged out", slog.String("userID", userID))
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out."})
}

// HandleGetUser returns the authenticated caller's profile.
//
// HTTP: GET /auth/user/
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.svc.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// profileRequest covers PUT and PATCH on the profile; pointers give PATCH
// its merge semantics.
type profileRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// HandleUpdateUser replaces the caller's profile fields.
//
// HTTP: PUT /auth/user/
func (h *AuthHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// PUT sets every field: absent ones reset to empty (which fails
	// validation for username/email — they can't be blanked).
	username := strVal(req.Username)
	email := strVal(req.Email)
	firstName := strVal(req.FirstName)
	lastName := strVal(req.LastName)

	user, err := h.svc.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Username:  &username,
		Email:     &email,
		FirstName: &firstName,
		LastName:  &lastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandlePatchUser merges the provided profile fields.
//
// HTTP: PATCH /auth/user/
func (h *AuthHandler) HandlePatchUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandlePasswordReset starts the reset flow.
//
// HTTP: POST /auth/password-reset/
// REQUEST BODY: {"email": "..."}
//
// Always responds {"status": "OK"} for a well-formed address — whether an
// account exists stays private.
func (h *AuthHandler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// HandlePasswordResetConfirm finishes the reset flow.
//
// HTTP: POST /auth/password-reset/confirm/
// REQUEST BODY: {"token": "...", "password": "..."}
func (h *AuthHandler) HandlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.ConfirmReset(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

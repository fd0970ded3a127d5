// Package service — authentication business logic.
//
// AuthService is the business logic layer for identity. It sits between
// the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//	                   ↘ EmailSender (welcome / reset mail)
//
// KEY RESPONSIBILITIES:
//   - Credential checks: email + password against the stored bcrypt hash
//   - Registration with field-by-field validation
//   - The password-reset round trip (request a token, confirm with it)
//   - Profile reads and updates
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/snippets-api/internal/apperror"
	"github.com/sakif/snippets-api/internal/auth"
	"github.com/sakif/snippets-api/internal/model"
	"github.com/sakif/snippets-api/internal/repository"
	"github.com/sakif/snippets-api/internal/validation"
)

// ResetTokenTTL is how long a password-reset link stays valid.
const ResetTokenTTL = time.Hour

// EmailSender is the slice of the mail client AuthService needs. Declared
// here (the consumer) so tests can swap in a recorder without touching the
// email package.
type EmailSender interface {
	SendWelcome(ctx context.Context, to, username string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendPasswordResetConfirmation(ctx context.Context, to, username string) error
}

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	resets    repository.TokenRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	mailer    EmailSender
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go (or main.go) when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	resets repository.TokenRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	mailer EmailSender,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		resets:    resets,
		tokens:    tokens,
		passwords: passwords,
		mailer:    mailer,
		logger:    logger,
	}
}

// TokenPair bundles the two JWTs issued on login: a short-lived access
// token and a longer-lived refresh token.
type TokenPair struct {
	Access  string
	Refresh string
}

// Login checks email + password and issues a token pair.
//
// SECURITY NOTE: unknown email and wrong password return the SAME error.
// Distinguishing them would let an attacker probe which addresses have
// accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, apperror.Validation("Email and password are required.")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// NotFound and everything else both end in "Invalid credentials." —
		// but only real failures get logged as errors.
		if !isNotFound(err) {
			s.logger.Error("login lookup failed", slog.String("error", err.Error()))
		}
		return nil, apperror.Unauthorized("Invalid credentials.")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("Invalid credentials.")
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperror.Validation("Refresh token is required.")
	}

	userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return "", apperror.Unauthorized("Invalid or expired refresh token.")
	}

	access, err := s.tokens.GenerateAccess(userID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating access token for user %s: %w", userID, err)
	}

	return access, nil
}

// RegisterInput carries the registration form fields. Password2 is the
// confirmation field: it must match Password exactly.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	FirstName string
	LastName  string
}

// Register validates every field, creates the account, and sends a welcome
// email.
//
// VALIDATE EVERYTHING, THEN FAIL ONCE:
// Instead of stopping at the first bad field, we collect all field errors
// into one response. A form with three mistakes gets all three messages in
// a single round trip.
//
// The uniqueness pre-checks here are best-effort — two concurrent
// registrations can both pass them. The database UNIQUE constraints are the
// real guarantee, and the repository maps a constraint violation to the
// same field-scoped error, so the client sees an identical response either
// way.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	fields := map[string]string{}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validation.Email(in.Email); err != nil {
		fields["email"] = err.Error()
	} else if taken, err := s.emailTaken(ctx, in.Email, ""); err != nil {
		return nil, err
	} else if taken {
		fields["email"] = "This email is already registered"
	}

	if err := validation.Username(in.Username); err != nil {
		fields["username"] = err.Error()
	} else if taken, err := s.usernameTaken(ctx, in.Username, ""); err != nil {
		return nil, err
	} else if taken {
		fields["username"] = "This username is already taken"
	}

	if err := validation.Password(in.Password); err != nil {
		fields["password"] = err.Error()
	}
	if in.Password2 == "" {
		fields["password2"] = "Password confirmation is required"
	} else if in.Password != in.Password2 {
		// Both fields carry the mismatch: the client highlights both inputs.
		fields["password"] = "Password fields didn't match."
		fields["password2"] = "Password fields didn't match."
	}

	if len(fields) > 0 {
		return nil, apperror.ValidationFields(fields)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// A lost uniqueness race surfaces here as a field validation error;
		// pass it through untouched.
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	// Best-effort: a mail outage must not roll back a created account.
	if err := s.mailer.SendWelcome(ctx, user.Email, user.Username); err != nil {
		s.logger.Warn("welcome email failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// RequestReset starts the password-reset flow for an email address.
//
// ALWAYS SUCCEEDS for a well-formed address, whether or not an account
// exists — a different response for known addresses would disclose who has
// an account. When the account exists: outstanding tokens are invalidated,
// a fresh one is stored, and the reset link goes out by email.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validation.Email(email); err != nil {
		return apperror.ValidationFailed("email", err.Error())
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("service/auth: looking up reset email: %w", err)
	}

	if err := s.resets.DeleteUnusedTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("service/auth: invalidating old reset tokens: %w", err)
	}

	value, err := auth.NewResetTokenValue()
	if err != nil {
		return fmt.Errorf("service/auth: generating reset token: %w", err)
	}

	token := &model.ResetToken{
		UserID:    user.ID,
		Token:     value,
		ExpiresAt: time.Now().Add(ResetTokenTTL),
	}
	if err := s.resets.CreateToken(ctx, token); err != nil {
		return fmt.Errorf("service/auth: storing reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, value); err != nil {
		// The caller still gets 200. The user can simply request again.
		s.logger.Error("password reset email failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("password reset requested", slog.String("userID", user.ID))
	return nil
}

// ConfirmReset finishes the flow: the token proves the caller owns the
// account's mailbox, so the password is replaced.
//
// ORDER MATTERS: the new password is validated BEFORE the token is
// consumed. Consumption is destructive — burning the single-use token on a
// too-weak password would force the user to request a whole new link.
func (s *AuthService) ConfirmReset(ctx context.Context, tokenValue, newPassword string) error {
	if tokenValue == "" {
		return apperror.Validation("Token is required")
	}
	if err := validation.Password(newPassword); err != nil {
		return apperror.ValidationFailed("password", err.Error())
	}

	token, err := s.resets.ConsumeToken(ctx, tokenValue)
	if err != nil {
		if isNotFound(err) {
			return apperror.Validation("Invalid or expired token")
		}
		return fmt.Errorf("service/auth: consuming reset token: %w", err)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/auth: hashing new password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		return fmt.Errorf("service/auth: storing new password: %w", err)
	}

	s.logger.Info("password reset completed", slog.String("userID", token.UserID))

	if user, err := s.users.GetUserByID(ctx, token.UserID); err == nil {
		if err := s.mailer.SendPasswordResetConfirmation(ctx, user.Email, user.Username); err != nil {
			s.logger.Warn("password reset confirmation email failed",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// GetUserByID returns the user for the given internal ID.
//
// Used by the profile handler to look up the full user record after the
// middleware validates the JWT and extracts the userID from the token's
// Subject claim, and by the /users/{id} directory endpoint.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.NotFound("user", id)
	}
	return s.users.GetUserByID(ctx, id)
}

// ListUsers returns a page of the user directory plus the total count.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	limit = clampPageSize(limit)
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.ListUsers(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("service/auth: listing users: %w", err)
	}
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("service/auth: counting users: %w", err)
	}

	return users, count, nil
}

// UpdateProfileInput uses pointers for the same PATCH-merge reason as
// UpdateSnippetInput: nil means "leave this field alone".
type UpdateProfileInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// UpdateProfile applies profile changes for the authenticated user, with
// the same format and uniqueness rules as registration.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validation.Email(email); err != nil {
			fields["email"] = err.Error()
		} else if taken, err := s.emailTaken(ctx, email, user.ID); err != nil {
			return nil, err
		} else if taken {
			fields["email"] = "This email is already registered"
		} else {
			user.Email = email
		}
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.Username(username); err != nil {
			fields["username"] = err.Error()
		} else if taken, err := s.usernameTaken(ctx, username, user.ID); err != nil {
			return nil, err
		} else if taken {
			fields["username"] = "This username is already taken"
		} else {
			user.Username = username
		}
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}

	if len(fields) > 0 {
		return nil, apperror.ValidationFields(fields)
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))
	return user, nil
}

func (s *AuthService) issueTokens(userID string) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// emailTaken reports whether another account (not excludeID) already uses
// the address.
func (s *AuthService) emailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("service/auth: checking email uniqueness: %w", err)
	}
	return existing.ID != excludeID, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

func (s *AuthService) usernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("service/auth: checking username uniqueness: %w", err)
	}
	return existing.ID != excludeID, nil
}

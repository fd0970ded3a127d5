// Package auth provides JWT token generation/validation and password
// hashing for the snippets API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Client POSTs email+password to /auth/login/
// 2. Server verifies the bcrypt hash and issues TWO tokens:
//    - access token (short-lived) sent as "Authorization: Bearer <jwt>"
//      on every API call
//    - refresh token (long-lived) exchanged at /auth/login/refresh/ for a
//      fresh access token when the old one expires
// 3. Middleware validates the access token and puts the userID in the
//    request context
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't need to store
// session data. All the information needed (userID, expiry, token type) is
// inside the signed token. The signature ensures nobody can tamper with it
// without the secret key. Logout is therefore client-side only: the server
// has nothing to revoke.
//
// WHY A "typ" CLAIM?
// Access and refresh tokens are signed with the same secret. Without a
// type claim, a stolen refresh token (lifetime: days) could be replayed as
// an access token. Each token carries typ=access or typ=refresh and the
// validators reject the wrong kind.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. Access tokens are deliberately short — a leaked one is
// only useful for minutes. Refresh tokens last a week, after which the
// user logs in again.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	issuer = "snippets-api"
)

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations — keep it safe, rotate
// it periodically in production.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims (Issuer,
// Subject, ExpiresAt, IssuedAt) and adds the token-type discriminator.
//
// We use "sub" (Subject) to store the internal user ID — the standard JWT
// claim for identifying who the token belongs to.
type claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// GenerateAccess creates and signs a short-lived access token for userID.
func (s *TokenService) GenerateAccess(userID string) (string, error) {
	return s.generate(userID, tokenTypeAccess, AccessTokenTTL)
}

// GenerateRefresh creates and signs a long-lived refresh token for userID.
func (s *TokenService) GenerateRefresh(userID string) (string, error) {
	return s.generate(userID, tokenTypeRefresh, RefreshTokenTTL)
}

// generateWithDuration exists for tests that need an already-expired token.
func (s *TokenService) generateWithDuration(userID, tokenType string, d time.Duration) (string, error) {
	return s.generate(userID, tokenType, d)
}

// generate signs a token with HS256 (HMAC-SHA256).
// Symmetric signing: same key signs and verifies. Fast and simple — right
// for a single-service deployment.
func (s *TokenService) generate(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", tokenType, err)
	}

	return signed, nil
}

// ValidateAccess parses and verifies an access token, returning the userID
// from the "sub" claim.
func (s *TokenService) ValidateAccess(tokenStr string) (string, error) {
	return s.validate(tokenStr, tokenTypeAccess)
}

// ValidateRefresh parses and verifies a refresh token, returning the userID.
func (s *TokenService) ValidateRefresh(tokenStr string) (string, error) {
	return s.validate(tokenStr, tokenTypeRefresh)
}

// validate verifies signature, expiry, issuer, algorithm, and token type.
//
// ALGORITHM CONFUSION ATTACK:
// Without checking the algorithm, an attacker could send a token signed
// with "none" and the library might accept it. Passing jwt.WithValidMethods
// prevents this.
func (s *TokenService) validate(tokenStr, wantType string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}
	if c.TokenType != wantType {
		return "", fmt.Errorf("auth: token is not a %s token", wantType)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}

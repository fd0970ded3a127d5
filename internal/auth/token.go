package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewResetTokenValue returns a 64-character hex string from 32 bytes of
// crypto/rand output — the secret value embedded in password-reset links.
//
// WHY NOT A JWT?
// Reset tokens must be single-use, which means server-side state anyway
// (the reset_tokens table). A random opaque value is simpler than a signed
// token and reveals nothing if the JWT secret ever leaks.
func NewResetTokenValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generating reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

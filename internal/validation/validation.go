// Package validation holds the field-format rules shared by registration,
// profile updates, password reset, and the contact form.
//
// These are pure functions: string in, error out. Keeping them out of the
// service layer means every flow that accepts an email or password applies
// exactly the same rules.
package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// Email validates format and length.
// Uses Go's built-in net/mail parser which follows RFC 5322 — no hand-rolled
// regex to get subtly wrong.
func Email(email string) error {
	if email == "" {
		return errors.New("Email is required")
	}
	// RFC 5321: total address length caps at 254 with the @.
	if len(email) > 254 {
		return errors.New("Email address is too long")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("Please enter a valid email address")
	}
	return nil
}

// Password enforces the strength policy for new passwords.
//
// The 72-byte ceiling is a bcrypt limit: bcrypt silently truncates longer
// inputs, so we reject them up front instead of hashing a prefix.
func Password(password string) error {
	if password == "" {
		return errors.New("Password is required")
	}
	if len(password) < 8 {
		return errors.New("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return errors.New("Password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("Password is too common, please choose a stronger one")
		}
	}
	return nil
}

// commonPatterns blocks the passwords that top every breach list.
var commonPatterns = []string{
	"password", "12345678", "qwerty", "letmein",
	"welcome", "monkey", "dragon", "sunshine",
}

// Username validates the display-name format: non-empty, at most 150
// characters, limited to letters, digits, and the @/./+/-/_ set.
func Username(username string) error {
	if username == "" {
		return errors.New("Username is required")
	}
	if len(username) > 150 {
		return errors.New("Username cannot exceed 150 characters")
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return errors.New("Username can only contain letters, numbers, and @/./+/-/_ characters")
		}
	}
	return nil
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '@', r == '.', r == '+', r == '-', r == '_':
		return true
	}
	return false
}

package model

import "time"

// ResetToken is a single-use credential proving the holder initiated a
// password reset for a specific account.
//
// SINGLE-USE ENFORCEMENT:
// UsedAt is nil until the token is consumed. Consumption happens as one
// atomic UPDATE in the repository (set used_at WHERE used_at IS NULL AND
// not expired), so two concurrent confirm requests can never both succeed
// with the same token.
type ResetToken struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Token     string     `json:"-"` // the secret value, only ever sent by email
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// IsExpired reports whether the token's validity window has passed.
func (t *ResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsUsed reports whether the token has already been consumed.
func (t *ResetToken) IsUsed() bool {
	return t.UsedAt != nil
}

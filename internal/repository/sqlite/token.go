package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippets-api/internal/apperror"
	"github.com/sakif/snippets-api/internal/model"
	"github.com/sakif/snippets-api/internal/repository"
)

// compile-time check that *DB implements repository.TokenRepository
var _ repository.TokenRepository = (*DB)(nil)

// CreateToken stores a new password-reset token.
func (db *DB) CreateToken(ctx context.Context, token *model.ResetToken) error {
	token.ID = xid.New().String()
	token.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reset_tokens (id, user_id, token, expires_at, used_at, created_at)
		 VALUES (?, ?, ?, ?, NULL, ?)`,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating reset token: %w", err)
	}

	return nil
}

// ConsumeToken atomically marks a token used and returns it.
//
// WHY A SINGLE UPDATE?
// A SELECT-then-UPDATE pair has a race: two concurrent confirmations could
// both see the token as fresh, and both reset the password. The UPDATE's
// WHERE clause (unused AND unexpired) makes the claim atomic — exactly one
// caller gets rowsAffected == 1.
//
// Unknown, already-used, and expired tokens are deliberately the same
// ErrNotFound: callers can't distinguish them, so neither can attackers.
func (db *DB) ConsumeToken(ctx context.Context, tokenValue string) (*model.ResetToken, error) {
	now := time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE reset_tokens
		 SET used_at = ?
		 WHERE token = ? AND used_at IS NULL AND expires_at > ?`,
		now, tokenValue, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: consuming reset token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("reset token", "")
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, token, expires_at, used_at, created_at
		 FROM reset_tokens
		 WHERE token = ?`,
		tokenValue,
	)

	var t model.ResetToken
	err = row.Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading consumed token: %w", err)
	}

	return &t, nil
}

// DeleteUnusedTokens removes a user's outstanding tokens so only the most
// recently requested reset link works.
func (db *DB) DeleteUnusedTokens(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM reset_tokens WHERE user_id = ? AND used_at IS NULL`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting unused tokens for user %s: %w", userID, err)
	}

	return nil
}

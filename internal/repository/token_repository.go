package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TokenRepo persists and validates refresh tokens. The refresh_tokens table
// is keyed by user_id, so a user can never hold two live rows: rotation is a
// single upsert statement and two concurrent rotations for the same user
// simply race on which hash wins, never on row count.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Rotate replaces the user's refresh token with a new hash and expiry in one
// atomic statement. Any previously issued value stops validating the moment
// this returns, which is what makes replay of a stale refresh token
// impossible after a legitimate rotation.
func (r *TokenRepo) Rotate(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		 VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE token_hash=VALUES(token_hash), expires_at=VALUES(expires_at), created_at=NOW()`,
		userID, tokenHash, exp)
	return err
}

// Validate returns the owning user ID if a non-expired token with this hash
// exists. An expired row is deleted on sight and reported as ErrNotFound,
// indistinguishable from a hash that never existed.
func (r *TokenRepo) Validate(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if time.Now().UTC().After(expiresAt) {
		_, _ = r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
		return 0, ErrNotFound
	}
	return userID, nil
}

// RevokeByUser deletes the user's refresh token. Deleting an absent row is
// not an error, so logout stays idempotent.
func (r *TokenRepo) RevokeByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}

// RevokeByHash deletes the token row matching this hash, used when logout
// arrives with a refresh cookie but no resolvable principal.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
	return err
}

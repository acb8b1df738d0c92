package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dimitrije/gatekeeper/internal/database"
	"github.com/google/uuid"
)

// TokenService persists refresh tokens and one-time sign-in tokens. Only the
// SHA-256 of a token is ever stored.
type TokenService struct {
	db *database.DB
}

func NewTokenService(db *database.DB) *TokenService {
	return &TokenService{db: db}
}

func (s *TokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, HashToken(token), expiresAt)
	return err
}

// ConsumeRefreshToken deletes a live refresh token and returns its owner.
// Of concurrent calls with the same token at most one succeeds.
func (s *TokenService) ConsumeRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING user_id
	`, HashToken(token)).Scan(&userID)
	return userID, err
}

func (s *TokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

func (s *TokenService) StoreOneTimeToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO one_time_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, HashToken(token), expiresAt)
	return err
}

// ConsumeOneTimeToken marks the token used and returns its owner. A token can
// be consumed once, before it expires.
func (s *TokenService) ConsumeOneTimeToken(ctx context.Context, token string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE one_time_tokens SET consumed_at = NOW()
		WHERE token_hash = $1 AND consumed_at IS NULL AND expires_at > NOW()
		RETURNING user_id
	`, HashToken(token)).Scan(&userID)
	return userID, err
}

func (s *TokenService) CleanupExpired(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`); err != nil {
		return fmt.Errorf("cleanup refresh tokens: %w", err)
	}
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM one_time_tokens WHERE expires_at < NOW() OR consumed_at IS NOT NULL`); err != nil {
		return fmt.Errorf("cleanup one-time tokens: %w", err)
	}
	return nil
}

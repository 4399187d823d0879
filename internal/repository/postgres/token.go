package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(db *sqlx.DB) *tokenRepository {
	return &tokenRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *tokenRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, token, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) IsRefreshTokenValid(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE user_id = $1 AND token = $2 AND expires_at > $3 AND revoked_at IS NULL
		)
	`
	var valid bool
	if err := r.db.GetContext(ctx, &valid, query, userID, token, time.Now()); err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}
	return valid, nil
}

func (r *tokenRepository) RevokeRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $1
		WHERE user_id = $2 AND revoked_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medibook/medibook-api/internal/model"
	apperrors "github.com/medibook/medibook-api/pkg/errors"
)

type profileRepository struct {
	BaseRepository
}

func NewProfileRepository(db *sqlx.DB) *profileRepository {
	return &profileRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, phone, date_of_birth, gender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Phone,
		profile.DateOfBirth,
		profile.Gender,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT id, full_name, phone, date_of_birth, gender, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var profile model.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("profile", err)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

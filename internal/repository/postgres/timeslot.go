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

type timeSlotRepository struct {
	BaseRepository
}

func NewTimeSlotRepository(db *sqlx.DB) *timeSlotRepository {
	return &timeSlotRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *timeSlotRepository) Get(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	query := `
		SELECT id, doctor_id,
			   to_char(date, 'YYYY-MM-DD') AS date,
			   to_char(time, 'HH24:MI') AS time,
			   is_booked, created_at
		FROM time_slots
		WHERE id = $1
	`
	var slot model.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("time slot", err)
		}
		return nil, fmt.Errorf("failed to get time slot: %w", err)
	}
	return &slot, nil
}

func (r *timeSlotRepository) ListForDoctorDate(ctx context.Context, doctorID string, date string) ([]*model.TimeSlot, error) {
	query := `
		SELECT id, doctor_id,
			   to_char(date, 'YYYY-MM-DD') AS date,
			   to_char(time, 'HH24:MI') AS time,
			   is_booked, created_at
		FROM time_slots
		WHERE doctor_id = $1 AND date = $2
		ORDER BY time ASC
	`
	var slots []*model.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, doctorID, date); err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}
	return slots, nil
}

// UpsertIfAbsent keeps existing rows (and their is_booked state) untouched.
func (r *timeSlotRepository) UpsertIfAbsent(ctx context.Context, slots []*model.TimeSlot) error {
	query := `
		INSERT INTO time_slots (id, doctor_id, date, time, is_booked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (doctor_id, date, time) DO NOTHING
	`
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		for _, slot := range slots {
			if _, err := tx.ExecContext(ctx, query,
				slot.ID,
				slot.DoctorID,
				slot.Date,
				slot.Time,
				slot.IsBooked,
				now,
			); err != nil {
				return fmt.Errorf("failed to upsert time slot: %w", err)
			}
		}
		return nil
	})
}

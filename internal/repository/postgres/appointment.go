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

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) *appointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, time_slot_id, reason, notes,
			   follow_up, status, start_time, end_time, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

// Book claims the slot with a compare-and-set and inserts the appointment
// in the same transaction. Losing the CAS rolls everything back, so two
// racing bookings can never both land on one slot.
func (r *appointmentRepository) Book(ctx context.Context, slotID uuid.UUID, apt *model.Appointment, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		claim := `
			UPDATE time_slots
			SET is_booked = TRUE
			WHERE id = $1 AND is_booked = FALSE
		`
		result, err := tx.ExecContext(ctx, claim, slotID)
		if err != nil {
			return fmt.Errorf("failed to claim time slot: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.Conflict("time slot is no longer available", nil)
		}

		insert := `
			INSERT INTO appointments (
				id, patient_id, doctor_id, time_slot_id, reason, notes,
				follow_up, status, start_time, end_time, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		apt.CreatedAt = time.Now()
		apt.UpdatedAt = apt.CreatedAt
		if _, err := tx.ExecContext(ctx, insert,
			apt.ID,
			apt.PatientID,
			apt.DoctorID,
			apt.TimeSlotID,
			apt.Reason,
			apt.Notes,
			apt.FollowUp,
			apt.Status,
			apt.StartTime,
			apt.EndTime,
			apt.CreatedAt,
			apt.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		return createOutboxEvent(ctx, tx, event)
	})
}

// Cancel flips the appointment to cancelled and releases its slot in one
// transaction. The status predicate doubles as a CAS so a finished or
// already-cancelled appointment is never touched.
func (r *appointmentRepository) Cancel(ctx context.Context, aptID uuid.UUID, slotID uuid.UUID, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		update := `
			UPDATE appointments
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
		`
		result, err := tx.ExecContext(ctx, update,
			model.AppointmentStatusCancelled,
			time.Now(),
			aptID,
			model.AppointmentStatusScheduled,
		)
		if err != nil {
			return fmt.Errorf("failed to cancel appointment: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.Conflict("appointment is not cancellable", nil)
		}

		release := `
			UPDATE time_slots
			SET is_booked = FALSE
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, release, slotID); err != nil {
			return fmt.Errorf("failed to release time slot: %w", err)
		}

		return createOutboxEvent(ctx, tx, event)
	})
}

// appointmentRow flattens the joined doctor and slot columns.
type appointmentRow struct {
	model.Appointment
	DoctorName           *string  `db:"doctor_name"`
	DoctorSpecialization *string  `db:"doctor_specialization"`
	DoctorImageURL       *string  `db:"doctor_imageurl"`
	DoctorExperience     *int     `db:"doctor_experience"`
	DoctorRating         *float64 `db:"doctor_rating"`
	SlotDate             *string  `db:"slot_date"`
	SlotTime             *string  `db:"slot_time"`
	SlotBooked           *bool    `db:"slot_is_booked"`
	PatientName          *string  `db:"patient_name"`
	PatientPhone         *string  `db:"patient_phone"`
}

func (row *appointmentRow) toAppointment() *model.Appointment {
	apt := row.Appointment
	if row.DoctorName != nil {
		apt.Doctor = &model.Doctor{
			ID:             apt.DoctorID,
			Name:           *row.DoctorName,
			Specialization: deref(row.DoctorSpecialization),
			ImageURL:       deref(row.DoctorImageURL),
		}
		if row.DoctorExperience != nil {
			apt.Doctor.Experience = *row.DoctorExperience
		}
		if row.DoctorRating != nil {
			apt.Doctor.Rating = *row.DoctorRating
		}
	}
	if row.SlotDate != nil && row.SlotTime != nil {
		apt.TimeSlot = &model.TimeSlot{
			ID:       apt.TimeSlotID,
			DoctorID: apt.DoctorID,
			Date:     *row.SlotDate,
			Time:     *row.SlotTime,
		}
		if row.SlotBooked != nil {
			apt.TimeSlot.IsBooked = *row.SlotBooked
		}
	}
	if row.PatientName != nil || row.PatientPhone != nil {
		apt.Patient = &model.Profile{
			ID:       apt.PatientID,
			FullName: row.PatientName,
			Phone:    row.PatientPhone,
		}
	}
	return &apt
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.time_slot_id, a.reason, a.notes,
			   a.follow_up, a.status, a.start_time, a.end_time, a.created_at, a.updated_at,
			   d.name AS doctor_name,
			   d.specialization AS doctor_specialization,
			   d.imageurl AS doctor_imageurl,
			   d.experience AS doctor_experience,
			   d.rating AS doctor_rating,
			   to_char(t.date, 'YYYY-MM-DD') AS slot_date,
			   to_char(t.time, 'HH24:MI') AS slot_time,
			   t.is_booked AS slot_is_booked
		FROM appointments a
		LEFT JOIN doctors d ON d.id = a.doctor_id
		LEFT JOIN time_slots t ON t.id = a.time_slot_id
		WHERE a.patient_id = $1
		ORDER BY a.created_at DESC
	`
	var rows []*appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	appointments := make([]*model.Appointment, 0, len(rows))
	for _, row := range rows {
		appointments = append(appointments, row.toAppointment())
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.time_slot_id, a.reason, a.notes,
			   a.follow_up, a.status, a.start_time, a.end_time, a.created_at, a.updated_at,
			   to_char(t.date, 'YYYY-MM-DD') AS slot_date,
			   to_char(t.time, 'HH24:MI') AS slot_time,
			   t.is_booked AS slot_is_booked,
			   p.full_name AS patient_name,
			   p.phone AS patient_phone
		FROM appointments a
		LEFT JOIN time_slots t ON t.id = a.time_slot_id
		LEFT JOIN profiles p ON p.id = a.patient_id
		WHERE a.doctor_id = $1 AND a.status <> $2
		ORDER BY t.date ASC, t.time ASC
	`
	var rows []*appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, doctorID, model.AppointmentStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}

	appointments := make([]*model.Appointment, 0, len(rows))
	for _, row := range rows {
		appointments = append(appointments, row.toAppointment())
	}
	return appointments, nil
}

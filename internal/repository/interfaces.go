package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/model"
)

// Row-not-found conditions are reported as pkg/errors.NotFound so services
// can map them without inspecting driver errors.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type TokenRepository interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	IsRefreshTokenValid(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	RevokeRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
}

type TimeSlotRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error)
	// ListForDoctorDate returns the doctor's slots for a YYYY-MM-DD date,
	// ordered ascending by time-of-day. The doctor ID is the wire form of
	// a DoctorRef, so demo ids ("1".."6") query the same column as uuids.
	ListForDoctorDate(ctx context.Context, doctorID string, date string) ([]*model.TimeSlot, error)
	// UpsertIfAbsent inserts slots that do not exist yet and leaves
	// existing rows untouched. Used by the persisted demo-slot strategy.
	UpsertIfAbsent(ctx context.Context, slots []*model.TimeSlot) error
}

type AppointmentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// Book atomically claims the slot (is_booked false -> true), inserts
	// the appointment and records the outbox event. A slot already booked
	// rolls everything back with a Conflict error.
	Book(ctx context.Context, slotID uuid.UUID, apt *model.Appointment, event *model.OutboxEvent) error
	// Cancel atomically sets the appointment cancelled, releases its slot
	// and records the outbox event.
	Cancel(ctx context.Context, aptID uuid.UUID, slotID uuid.UUID, event *model.OutboxEvent) error
	// ListForPatient returns the patient's appointments newest-first with
	// doctor and time slot joined.
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
	// ListForDoctor returns the doctor's non-cancelled appointments with
	// patient profile and time slot joined, ordered by slot date and time.
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
}

type OutboxRepository interface {
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment mirrors the appointments table. StartTime/EndTime were added
// in a later schema revision and, when present, supersede the joined slot's
// date+time for display and classification.
type Appointment struct {
	ID         uuid.UUID         `db:"id" json:"id"`
	PatientID  uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID   string            `db:"doctor_id" json:"doctor_id"`
	TimeSlotID string            `db:"time_slot_id" json:"time_slot_id"`
	Reason     string            `db:"reason" json:"reason"`
	Notes      *string           `db:"notes" json:"notes,omitempty"`
	FollowUp   bool              `db:"follow_up" json:"follow_up"`
	Status     AppointmentStatus `db:"status" json:"status"`
	StartTime  *time.Time        `db:"start_time" json:"start_time,omitempty"`
	EndTime    *time.Time        `db:"end_time" json:"end_time,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`

	// Joined rows, populated by list queries.
	Doctor   *Doctor   `db:"-" json:"doctor,omitempty"`
	TimeSlot *TimeSlot `db:"-" json:"time_slot,omitempty"`
	Patient  *Profile  `db:"-" json:"patient,omitempty"`
}

// BookAppointmentRequest is the booking payload. The slot and a non-blank
// reason are both hard preconditions; blank-after-trim reasons are rejected
// in the service before any write.
type BookAppointmentRequest struct {
	DoctorID   string `json:"doctor_id" validate:"required"`
	TimeSlotID string `json:"time_slot_id" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
}

// AppointmentList is a patient's appointments partitioned by the
// classification rule (terminal statuses are always past).
type AppointmentList struct {
	Upcoming []*Appointment `json:"upcoming"`
	Past     []*Appointment `json:"past"`
}

// DoctorSchedule is the doctor dashboard view: the doctor's own
// appointments for today plus everything later.
type DoctorSchedule struct {
	Today    []*Appointment `json:"today"`
	Upcoming []*Appointment `json:"upcoming"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Appointment event types published on the events channel.
const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and drained to the broker by the worker.
type OutboxEvent struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	EventType   string       `db:"event_type" json:"event_type"`
	Payload     []byte       `db:"payload" json:"payload"`
	Status      OutboxStatus `db:"status" json:"status"`
	RetryCount  int          `db:"retry_count" json:"retry_count"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time   `db:"processed_at" json:"processed_at,omitempty"`
}

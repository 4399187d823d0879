package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the profiles table. The ID is shared with the auth user.
// Rows are written once at registration and never touched by the booking
// flow afterwards.
type Profile struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FullName    *string   `db:"full_name" json:"full_name,omitempty"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	DateOfBirth *string   `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      *string   `db:"gender" json:"gender,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Doctor mirrors the doctors table. Rows are insert-only from this API:
// they are created at doctor registration and never mutated afterwards.
type Doctor struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	ImageURL       string    `db:"imageurl" json:"imageurl"`
	Experience     int       `db:"experience" json:"experience"`
	Rating         float64   `db:"rating" json:"rating"`
	Education      string    `db:"education" json:"education"`
	About          string    `db:"about" json:"about"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// DoctorRefKind tags a DoctorRef as either a stored row or a demo
// catalog entry.
type DoctorRefKind int

const (
	DoctorRefReal DoctorRefKind = iota
	DoctorRefDemo
)

// DoctorRef is the parsed form of a doctor identifier. Small positive
// integers are reserved for the demo catalog (index = integer - 1);
// everything else must be a stored row ID. Parsing happens once at the
// request boundary so nothing deeper re-tests the raw string.
type DoctorRef struct {
	Kind  DoctorRefKind
	ID    uuid.UUID
	Index int
}

// ParseDoctorRef classifies a raw doctor identifier.
func ParseDoctorRef(raw string) (DoctorRef, error) {
	if raw == "" {
		return DoctorRef{}, fmt.Errorf("empty doctor ID")
	}

	if isAllDigits(raw) {
		var n int
		if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n < 1 {
			return DoctorRef{}, fmt.Errorf("invalid demo doctor ID %q", raw)
		}
		return DoctorRef{Kind: DoctorRefDemo, Index: n - 1}, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return DoctorRef{}, fmt.Errorf("invalid doctor ID %q: %w", raw, err)
	}
	return DoctorRef{Kind: DoctorRefReal, ID: id}, nil
}

// IsDemo reports whether the ref points at the demo catalog.
func (r DoctorRef) IsDemo() bool {
	return r.Kind == DoctorRefDemo
}

// String returns the wire form of the identifier.
func (r DoctorRef) String() string {
	if r.Kind == DoctorRefDemo {
		return fmt.Sprintf("%d", r.Index+1)
	}
	return r.ID.String()
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// RegisterDoctorRequest is the doctor sign-up payload: auth credentials
// plus the public profile row inserted into doctors.
type RegisterDoctorRequest struct {
	Name           string `json:"name" validate:"required,min=2"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Specialization string `json:"specialization" validate:"required,min=2"`
	Education      string `json:"education" validate:"required,min=2"`
	Experience     int    `json:"experience" validate:"min=0"`
	About          string `json:"about" validate:"required,min=10"`
	ImageURL       string `json:"imageurl" validate:"omitempty,url"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider identifies how an account signs in.
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
)

// User is an auth identity. IsDoctor is a capability flag carried on the
// account itself, not a separate role entity: any identity can hold it.
type User struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Name         string       `db:"name" json:"name"`
	IsDoctor     bool         `db:"is_doctor" json:"is_doctor"`
	Provider     AuthProvider `db:"provider" json:"provider"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

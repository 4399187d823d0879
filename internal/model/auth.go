package model

import "github.com/google/uuid"

// TokenClaims carries the identity decoded from a bearer token.
type TokenClaims struct {
	UserID   uuid.UUID
	Email    string
	IsDoctor bool
}

// TokenResponse is returned by login, registration and token refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the patient sign-up payload: credentials plus the
// write-once profile fields.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Name        string `json:"name" validate:"required,min=2"`
	Phone       string `json:"phone" validate:"omitempty,min=6"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female other"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

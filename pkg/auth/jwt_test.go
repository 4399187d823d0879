package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/medibook-api/internal/model"
)

func testService() JWTService {
	return NewJWTService(Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
}

func testUser() *model.User {
	return &model.User{
		ID:       uuid.New(),
		Email:    "patient@example.com",
		IsDoctor: false,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := testService()
	user := testUser()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.False(t, claims.IsDoctor)
}

func TestDoctorFlagSurvivesRoundTrip(t *testing.T) {
	svc := testService()
	user := testUser()
	user.IsDoctor = true

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsDoctor)
}

func TestRefreshTokenUsesSeparateSecret(t *testing.T) {
	svc := testService()
	user := testUser()

	refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	// A refresh token must not validate as an access token.
	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := testService().GenerateAccessToken(testUser())
	require.NoError(t, err)

	other := NewJWTService(Config{Secret: "different", RefreshSecret: "x", Expiry: time.Hour, RefreshExpiry: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService(Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        -time.Minute,
		RefreshExpiry: time.Hour,
	})

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := testService().ValidateToken("not.a.token")
	assert.Error(t, err)
}

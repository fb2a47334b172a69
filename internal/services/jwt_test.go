package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendora/storefront-api/internal/models"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 30)
	user := &models.User{
		ID:      uuid.New(),
		Email:   "ada@example.com",
		IsAdmin: true,
	}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "trendora-api", claims.Issuer)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 30).GenerateToken(&models.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 30).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	expired := NewJWTService("test-secret", -1)
	token, err := expired.GenerateToken(&models.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = expired.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", 30)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestJWTService_ExpirySeconds(t *testing.T) {
	assert.Equal(t, 30*24*60*60, NewJWTService("test-secret", 30).ExpirySeconds())
}

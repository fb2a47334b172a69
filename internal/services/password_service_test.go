package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, svc.VerifyPassword("hunter22", hash))
	assert.Error(t, svc.VerifyPassword("hunter23", hash))
}

func TestPasswordService_GenerateSecureToken(t *testing.T) {
	svc := NewPasswordService()

	token, err := svc.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Regexp(t, "^[0-9a-f]+$", token)

	other, err := svc.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestPasswordService_HashToken(t *testing.T) {
	svc := NewPasswordService()

	first := svc.HashToken("abc123")
	assert.Len(t, first, 64)
	assert.Equal(t, first, svc.HashToken("abc123"))
	assert.NotEqual(t, first, svc.HashToken("abc124"))
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyToken(t *testing.T) {
	secret := []byte("session-secret")

	raw, err := SignToken(secret, "user-1", "a@b.com", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(secret, raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	raw, err := SignToken([]byte("reset-secret"), "user-1", "a@b.com", time.Hour)
	require.NoError(t, err)

	// A reset token must never be accepted as a session token.
	_, err = VerifyToken([]byte("session-secret"), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	secret := []byte("session-secret")
	raw, err := SignToken(secret, "user-1", "a@b.com", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(secret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken([]byte("session-secret"), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMintAndVerifyAccess(t *testing.T) {
	m := NewManager("unit-test-secret")

	token, err := m.MintAccess("user-1", "a@example.com")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UID)
	require.Equal(t, "a@example.com", claims.Email)
	require.Empty(t, claims.Purpose)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a").MintAccess("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = NewManager("secret-b").Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewManager("secret").Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurposeTokenCarriesPurpose(t *testing.T) {
	m := NewManager("secret")

	token, err := m.MintPurpose("a@example.com", "password-reset", time.Hour)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", claims.Email)
	require.Equal(t, "password-reset", claims.Purpose)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("secret")

	token, err := m.MintPurpose("a@example.com", "password-reset", -time.Minute)
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	require.True(t, CheckPassword(hash, "hunter22"))
	require.False(t, CheckPassword(hash, "hunter23"))
}

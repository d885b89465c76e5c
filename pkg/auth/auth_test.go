package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("hunter3", hash))
}

func TestLogin(t *testing.T) {
	a, err := NewAuthenticator("secret", "hunter2", "", time.Hour)
	require.NoError(t, err)

	_, err = a.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, err := a.Login("hunter2")
	require.NoError(t, err)

	claims, err := a.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, AdminSubject, claims.Username)
	assert.Equal(t, AdminSubject, claims.Subject)
}

func TestNewAuthenticator_PrehashedPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	a, err := NewAuthenticator("secret", "", hash, time.Hour)
	require.NoError(t, err)
	_, err = a.Login("pw")
	assert.NoError(t, err)
}

func TestNewAuthenticator_Errors(t *testing.T) {
	_, err := NewAuthenticator("", "pw", "", time.Hour)
	assert.Error(t, err)
	_, err = NewAuthenticator("secret", "", "", time.Hour)
	assert.Error(t, err)
}

func TestVerifyToken_Rejects(t *testing.T) {
	a, err := NewAuthenticator("secret", "pw", "", time.Hour)
	require.NoError(t, err)
	other, err := NewAuthenticator("other-secret", "pw", "", time.Hour)
	require.NoError(t, err)

	token, err := other.CreateToken("admin")
	require.NoError(t, err)
	_, err = a.VerifyToken(token)
	assert.Error(t, err, "token signed with another secret")

	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := a.CreateToken("admin")
	require.NoError(t, err)
	_, err = a.VerifyToken(expired)
	assert.Error(t, err, "expired token")

	_, err = a.VerifyToken("not-a-jwt")
	assert.Error(t, err)
}

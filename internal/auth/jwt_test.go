package auth

import (
	"testing"

	"github.com/nadil1995/notehive2/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "alice@example.com",
		Role:  models.RoleUser,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret")
	user := testUser()

	token, err := tm.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := tm.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret")
	user := testUser()

	token, err := tm.GenerateRefreshToken(user)
	require.NoError(t, err)

	claims, err := tm.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestTokenSecretsAreIndependent(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret")
	user := testUser()

	access, err := tm.GenerateAccessToken(user)
	require.NoError(t, err)
	refresh, err := tm.GenerateRefreshToken(user)
	require.NoError(t, err)

	_, err = tm.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerificationFailuresAreUniform(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret")
	other := NewTokenManager("other-secret", "other-refresh")
	user := testUser()

	forged, err := other.GenerateAccessToken(user)
	require.NoError(t, err)

	valid, err := tm.GenerateAccessToken(user)
	require.NoError(t, err)
	tampered := valid[:len(valid)-2] + "xx"

	for _, token := range []string{forged, tampered, "not-a-token", ""} {
		_, err := tm.ParseAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

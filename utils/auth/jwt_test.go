package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "abroad-api-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testJWTManager()

	token, err := m.GenerateAccessToken(42, "student@example.com", "student")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "student@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "abroad-api-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "every token carries a unique jti")
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := testJWTManager()

	token, err := m.GenerateRefreshToken(7, "admin@example.com", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenTypeConfusionRejected(t *testing.T) {
	m := testJWTManager()

	access, err := m.GenerateAccessToken(1, "a@b.c", "student")
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(1, "a@b.c", "student")
	require.NoError(t, err)

	// A refresh token never authenticates a request, and an access token
	// never mints a new pair. The secrets differ, so both fail validation.
	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	m := testJWTManager()
	other := NewJWTManager(JWTConfig{
		Secret:        "different-secret",
		RefreshSecret: "different-refresh",
		Expiry:        time.Hour,
		RefreshExpiry: time.Hour,
		Issuer:        "abroad-api-test",
	})

	token, err := m.GenerateAccessToken(1, "a@b.c", "student")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager(JWTConfig{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        -time.Minute,
		RefreshExpiry: -time.Minute,
		Issuer:        "abroad-api-test",
	})

	token, err := m.GenerateAccessToken(1, "a@b.c", "student")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	m := testJWTManager()

	_, err := m.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUniqueJTIPerToken(t *testing.T) {
	m := testJWTManager()

	first, err := m.GenerateAccessToken(1, "a@b.c", "student")
	require.NoError(t, err)
	second, err := m.GenerateAccessToken(1, "a@b.c", "student")
	require.NoError(t, err)

	firstClaims, err := m.ValidateAccessToken(first)
	require.NoError(t, err)
	secondClaims, err := m.ValidateAccessToken(second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestAccessExpirySeconds(t *testing.T) {
	m := testJWTManager()
	assert.Equal(t, 3600, m.AccessExpirySeconds())
}

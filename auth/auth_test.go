package auth

import (
	"context"
	"testing"
	"time"

	"github.com/codehive/codehive/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T, secret string) *Authenticator {
	t.Helper()
	cfg := &config.Config{AuthConfig: config.AuthConfig{JWTSecret: secret}}
	a, err := NewAuthenticator(cfg)
	require.NoError(t, err)
	return a
}

func TestNewAuthenticatorRequiresMethod(t *testing.T) {
	_, err := NewAuthenticator(&config.Config{})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	a := newTestAuthenticator(t, "secret")
	token, err := a.GenerateToken("alice", time.Hour)
	require.NoError(t, err)

	userId, err := a.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userId)

	// second verification hits the cache
	userId, err = a.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userId)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	a := newTestAuthenticator(t, "secret")
	_, err := a.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	other := newTestAuthenticator(t, "other-secret")
	token, err := other.GenerateToken("alice", time.Hour)
	require.NoError(t, err)

	a := newTestAuthenticator(t, "secret")
	_, err = a.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	a := newTestAuthenticator(t, "secret")
	token, err := a.GenerateToken("alice", -time.Minute)
	require.NoError(t, err)

	_, err = a.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingUserId(t *testing.T) {
	a := newTestAuthenticator(t, "secret")
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = a.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/styleforge/styleforge-api/internal/config"
)

const testSecret = "test-secret-that-is-at-least-32-chars!"

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	t.Run("empty secret disables auth", func(t *testing.T) {
		t.Parallel()
		svc, err := NewTokenService(config.AuthConfig{})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("short secret is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewTokenService(config.AuthConfig{JWTSecret: "too-short"})
		assert.Error(t, err)
	})

	t.Run("valid secret", func(t *testing.T) {
		t.Parallel()
		svc, err := NewTokenService(config.AuthConfig{JWTSecret: testSecret})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, "owner-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "owner-42", claims.OwnerID)
}

func TestValidateToken_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		svc, err := NewTokenService(config.AuthConfig{JWTSecret: testSecret})
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		t.Parallel()
		issuer, err := NewTokenService(config.AuthConfig{JWTSecret: testSecret})
		require.NoError(t, err)
		verifier, err := NewTokenService(
			config.AuthConfig{JWTSecret: "another-secret-that-is-32-chars-long!"})
		require.NoError(t, err)

		token, err := issuer.GenerateToken(ctx, "owner-42")
		require.NoError(t, err)

		_, err = verifier.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		svc := &hmacTokenService{
			signingKey: []byte(testSecret),
			timeFunc:   func() time.Time { return time.Now().Add(-48 * time.Hour) },
		}

		token, err := svc.GenerateToken(ctx, "owner-42")
		require.NoError(t, err)

		verifier := &hmacTokenService{signingKey: []byte(testSecret), timeFunc: time.Now}
		_, err = verifier.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

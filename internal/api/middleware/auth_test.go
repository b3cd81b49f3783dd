package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/styleforge/styleforge-api/internal/api/shared"
	"github.com/styleforge/styleforge-api/internal/auth"
	"github.com/styleforge/styleforge-api/internal/config"
)

const testSecret = "test-secret-that-is-at-least-32-chars!"

func ownerEchoHandler(t *testing.T, gotOwner *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotOwner = shared.GetOwnerID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentify(t *testing.T) {
	t.Parallel()

	newService := func(t *testing.T) auth.TokenService {
		t.Helper()
		svc, err := auth.NewTokenService(config.AuthConfig{JWTSecret: testSecret})
		require.NoError(t, err)
		return svc
	}

	t.Run("nil token service passes through anonymously", func(t *testing.T) {
		t.Parallel()
		var gotOwner string
		m := NewAuthMiddleware(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		r.Header.Set("Authorization", "Bearer anything")
		m.Identify(ownerEchoHandler(t, &gotOwner)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", gotOwner)
	})

	t.Run("missing header is anonymous", func(t *testing.T) {
		t.Parallel()
		var gotOwner string
		m := NewAuthMiddleware(newService(t))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		m.Identify(ownerEchoHandler(t, &gotOwner)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", gotOwner)
	})

	t.Run("valid token resolves the owner", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		token, err := svc.GenerateToken(context.Background(), "owner-9")
		require.NoError(t, err)

		var gotOwner string
		m := NewAuthMiddleware(svc)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		m.Identify(ownerEchoHandler(t, &gotOwner)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "owner-9", gotOwner)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		t.Parallel()
		var gotOwner string
		m := NewAuthMiddleware(newService(t))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		r.Header.Set("Authorization", "Token abc")
		m.Identify(ownerEchoHandler(t, &gotOwner)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		t.Parallel()
		var gotOwner string
		m := NewAuthMiddleware(newService(t))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		r.Header.Set("Authorization", "Bearer garbage")
		m.Identify(ownerEchoHandler(t, &gotOwner)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/styleforge/styleforge-api/internal/api/shared"
	"github.com/styleforge/styleforge-api/internal/auth"
	"github.com/styleforge/styleforge-api/internal/redact"
)

// AuthMiddleware resolves the owner identity for each request from a
// bearer token. Auth is optional: with no token service configured, or no
// Authorization header present, the request proceeds anonymously. A token
// that is present but invalid is still rejected.
type AuthMiddleware struct {
	tokens auth.TokenService
}

// NewAuthMiddleware creates an AuthMiddleware. tokens may be nil, which
// makes every request anonymous.
func NewAuthMiddleware(tokens auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Identify attaches the owner identity from the Authorization header to
// the request context.
func (m *AuthMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if m.tokens == nil || authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.tokens.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch err {
			case auth.ErrExpiredToken:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case auth.ErrInvalidToken:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := shared.WithOwnerID(r.Context(), claims.OwnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

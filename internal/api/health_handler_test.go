package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/styleforge/styleforge-api/internal/api"
	"github.com/styleforge/styleforge-api/internal/domain"
)

// staticMirror reports a fixed availability and persists nothing.
type staticMirror struct {
	available bool
}

func (m *staticMirror) IsAvailable(ctx context.Context) bool               { return m.available }
func (m *staticMirror) Save(ctx context.Context, task *domain.Task) error  { return nil }
func (m *staticMirror) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (m *staticMirror) LoadAll(ctx context.Context) ([]*domain.Task, error) { return nil, nil }

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		available bool
	}{
		{"reports reachable mirror", true},
		{"reports unreachable mirror", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			handler := api.NewHealthHandler(&staticMirror{available: tc.available})

			w := httptest.NewRecorder()
			handler.Check(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, w.Code)
			var resp api.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "ok", resp.Status)
			assert.Equal(t, tc.available, resp.Persistence)
		})
	}
}

package api

import (
	"net/http"

	"github.com/styleforge/styleforge-api/internal/api/shared"
	"github.com/styleforge/styleforge-api/internal/store"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	// Persistence reports whether the durable task mirror is reachable.
	// The service is healthy either way; tasks just stop surviving
	// restarts when it is false.
	Persistence bool `json:"persistence"`
}

// HealthHandler reports service liveness and mirror reachability.
type HealthHandler struct {
	mirror store.TaskMirror
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(mirror store.TaskMirror) *HealthHandler {
	return &HealthHandler{mirror: mirror}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:      "ok",
		Persistence: h.mirror.IsAvailable(r.Context()),
	})
}

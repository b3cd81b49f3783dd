package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

	RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/tasks/abc", nil)
	r = r.WithContext(SetTraceID(r.Context()))
	w := httptest.NewRecorder()

	RespondWithError(w, r, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Task not found", body.Error)
	assert.NotEmpty(t, body.TraceID)
}

func TestRespondWithErrorAndLog_NeverLeaksError(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	w := httptest.NewRecorder()

	internal := errors.New("dial postgres://user:secret@db:5432/tasks failed")
	RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create task", internal)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.NotContains(t, w.Body.String(), "postgres://")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to create task", body.Error)
}

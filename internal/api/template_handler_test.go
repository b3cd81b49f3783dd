package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/styleforge/styleforge-api/internal/api"
)

func TestListTemplatesEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var templates []api.TemplateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &templates))
	require.NotEmpty(t, templates)

	ids := make(map[string]bool, len(templates))
	for _, template := range templates {
		assert.NotEmpty(t, template.ID)
		assert.NotEmpty(t, template.Name)
		ids[template.ID] = true
	}
	assert.True(t, ids["watercolor"])
	assert.True(t, ids["anime"])
}

package api

import (
	"net/http"

	"github.com/styleforge/styleforge-api/internal/api/shared"
	"github.com/styleforge/styleforge-api/internal/catalog"
)

// TemplateHandler serves the style template catalog.
type TemplateHandler struct {
	catalog catalog.Catalog
}

// NewTemplateHandler creates a TemplateHandler.
func NewTemplateHandler(cat catalog.Catalog) *TemplateHandler {
	return &TemplateHandler{catalog: cat}
}

// ListTemplates handles GET /api/templates.
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.catalog.List(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list templates", err)
		return
	}

	responses := make([]TemplateResponse, 0, len(templates))
	for _, template := range templates {
		responses = append(responses, templateToResponse(template))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

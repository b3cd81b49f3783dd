package api

import (
	"time"

	"github.com/styleforge/styleforge-api/internal/domain"
	"github.com/styleforge/styleforge-api/internal/task"
)

// TaskResponse is the wire representation of a generation task.
type TaskResponse struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id,omitempty"`
	TemplateID     string     `json:"template_id"`
	TemplateName   string     `json:"template_name,omitempty"`
	Status         string     `json:"status"`
	Progress       int        `json:"progress"`
	OriginalImage  string     `json:"original_image"`
	GeneratedImage string     `json:"generated_image,omitempty"`
	CustomPrompt   string     `json:"custom_prompt,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// TaskListResponse is the paginated list envelope.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// TemplateResponse is the wire representation of a style template.
type TemplateResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PreviewImage string `json:"preview_image,omitempty"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID.String(),
		OwnerID:        t.OwnerID,
		TemplateID:     t.TemplateID,
		Status:         string(t.Status),
		Progress:       t.Progress,
		OriginalImage:  t.OriginalImage,
		GeneratedImage: t.GeneratedImage,
		CustomPrompt:   t.CustomPrompt,
		ErrorMessage:   t.ErrorMessage,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		CompletedAt:    t.CompletedAt,
	}
}

func viewToResponse(v *task.TaskView) TaskResponse {
	resp := taskToResponse(v.Task)
	if v.Template != nil {
		resp.TemplateName = v.Template.Name
	}
	return resp
}

func templateToResponse(t *domain.Template) TemplateResponse {
	return TemplateResponse{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		PreviewImage: t.PreviewImage,
	}
}

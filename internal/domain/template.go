package domain

import "errors"

// Common validation errors for Template
var (
	ErrEmptyTemplateID     = errors.New("template ID cannot be empty")
	ErrEmptyTemplateName   = errors.New("template name cannot be empty")
	ErrEmptyTemplatePrompt = errors.New("template prompt cannot be empty")
)

// Template describes a visual style that can be applied to an uploaded
// photo. The Prompt is the default instruction sent to the image model when
// the task carries no custom prompt.
type Template struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Prompt       string `json:"prompt"`
	PreviewImage string `json:"preview_image,omitempty"`
}

// Validate checks if the Template has valid data.
func (t *Template) Validate() error {
	if t.ID == "" {
		return ErrEmptyTemplateID
	}

	if t.Name == "" {
		return ErrEmptyTemplateName
	}

	if t.Prompt == "" {
		return ErrEmptyTemplatePrompt
	}

	return nil
}

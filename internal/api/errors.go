package api

import (
	"errors"
	"net/http"

	"github.com/styleforge/styleforge-api/internal/catalog"
	"github.com/styleforge/styleforge-api/internal/domain"
	"github.com/styleforge/styleforge-api/internal/store"
	"github.com/styleforge/styleforge-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so
// handlers never leak internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, catalog.ErrTemplateNotFound):
		return http.StatusNotFound

	case errors.Is(err, task.ErrTemplateNotFound):
		// Unknown template in a create request is a client mistake.
		return http.StatusBadRequest

	case errors.Is(err, task.ErrTaskProcessing):
		return http.StatusConflict

	case errors.Is(err, task.ErrTaskNotRetryable):
		return http.StatusConflict

	case errors.Is(err, task.ErrEmptyImage),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, task.ErrTemplateNotFound),
		errors.Is(err, catalog.ErrTemplateNotFound):
		return "Unknown style template"

	case errors.Is(err, task.ErrTaskProcessing):
		return "Task is currently processing"

	case errors.Is(err, task.ErrTaskNotRetryable):
		return "Only failed tasks can be retried"

	case errors.Is(err, task.ErrEmptyImage):
		return "An image file is required"

	case errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	default:
		return "An unexpected error occurred"
	}
}

package task

import "errors"

// Common errors returned by the pipeline's public operations.
var (
	// ErrTemplateNotFound is returned by CreateTask when the template ID
	// does not resolve; no task is created.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTaskNotFound is returned by read and retry operations for unknown IDs.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskProcessing is returned by RetryTask when the task is still
	// actively processing.
	ErrTaskProcessing = errors.New("task is still processing")

	// ErrTaskNotRetryable is returned by RetryTask for tasks that have not failed.
	ErrTaskNotRetryable = errors.New("only failed tasks can be retried")

	// ErrEmptyImage is returned by CreateTask when no image bytes were uploaded.
	ErrEmptyImage = errors.New("uploaded image cannot be empty")
)

// Dependency validation errors for NewPipeline.
var (
	ErrNilStore   = errors.New("task store cannot be nil")
	ErrNilMirror  = errors.New("task mirror cannot be nil")
	ErrNilImages  = errors.New("image store cannot be nil")
	ErrNilCatalog = errors.New("catalog cannot be nil")
	ErrNilLogger  = errors.New("logger cannot be nil")
)

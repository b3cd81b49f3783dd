package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a generation task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID         = errors.New("task ID cannot be empty")
	ErrEmptyTaskTemplateID = errors.New("task template ID cannot be empty")
	ErrEmptyOriginalImage  = errors.New("task original image reference cannot be empty")
)

// Task represents one user-initiated image generation request and its
// lifecycle state. The original upload and the generated result are
// referenced by Image Storage names (or, for generated results that could
// not be downloaded, by a remote URL).
type Task struct {
	ID             uuid.UUID  `json:"id"`
	OwnerID        string     `json:"owner_id,omitempty"`
	TemplateID     string     `json:"template_id"`
	OriginalImage  string     `json:"original_image"`
	GeneratedImage string     `json:"generated_image,omitempty"`
	Status         TaskStatus `json:"status"`
	Progress       int        `json:"progress"`
	CustomPrompt   string     `json:"custom_prompt,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// NewTask creates a new Task for the given template and uploaded image.
// The ID is supplied by the caller because the stored upload name is
// derived from it before the task exists. Status starts at pending with
// zero progress and matching creation/update timestamps.
// Returns an error if validation fails.
func NewTask(id uuid.UUID, ownerID, templateID, originalImage, customPrompt string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:            id,
		OwnerID:       ownerID,
		TemplateID:    templateID,
		OriginalImage: originalImage,
		Status:        TaskStatusPending,
		Progress:      0,
		CustomPrompt:  customPrompt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.TemplateID == "" {
		return ErrEmptyTaskTemplateID
	}

	if t.OriginalImage == "" {
		return ErrEmptyOriginalImage
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if t.Progress < 0 || t.Progress > 100 {
		return ErrInvalidProgress
	}

	return nil
}

// IsTerminal reports whether the status is completed or failed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Clone returns a deep copy of the task. The in-memory task store hands out
// clones so callers can never mutate the canonical record directly.
func (t *Task) Clone() *Task {
	clone := *t
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		clone.CompletedAt = &completedAt
	}
	return &clone
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/styleforge/styleforge-api/internal/domain"
)

// TaskStore is the authoritative live store for tasks. The in-memory
// implementation is the single source of truth; durable copies are handled
// separately by a TaskMirror.
//
// Implementations must hand out defensive copies: a task returned by Get or
// List must never share mutable state with the stored record.
type TaskStore interface {
	// Get retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Set stores or replaces the task under its ID.
	Set(ctx context.Context, task *domain.Task) error

	// Delete removes the task with the given ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns tasks sorted by creation time, newest first.
	// If ownerID is non-empty only that owner's tasks are returned.
	List(ctx context.Context, ownerID string) ([]*domain.Task, error)
}

// TaskMirror is the best-effort durable mirror of the TaskStore. All
// operations are fire-and-forget from the pipeline's point of view: errors
// are logged by callers and never affect task state. The mirrored copy may
// lag or be absent entirely; last-write-wins semantics are acceptable.
type TaskMirror interface {
	// IsAvailable reports whether the backing store is reachable.
	IsAvailable(ctx context.Context) bool

	// Save upserts the task record.
	Save(ctx context.Context, task *domain.Task) error

	// Delete removes the task record. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// LoadAll returns every mirrored task. It is used once at startup to
	// warm the in-memory store.
	LoadAll(ctx context.Context) ([]*domain.Task, error)
}

// NoopTaskMirror is a TaskMirror for running without a database. Every
// operation succeeds and persists nothing.
type NoopTaskMirror struct{}

// NewNoopTaskMirror creates a NoopTaskMirror.
func NewNoopTaskMirror() *NoopTaskMirror {
	return &NoopTaskMirror{}
}

// IsAvailable always reports false.
func (m *NoopTaskMirror) IsAvailable(ctx context.Context) bool { return false }

// Save discards the task.
func (m *NoopTaskMirror) Save(ctx context.Context, task *domain.Task) error { return nil }

// Delete discards the deletion.
func (m *NoopTaskMirror) Delete(ctx context.Context, id uuid.UUID) error { return nil }

// LoadAll returns no tasks.
func (m *NoopTaskMirror) LoadAll(ctx context.Context) ([]*domain.Task, error) { return nil, nil }

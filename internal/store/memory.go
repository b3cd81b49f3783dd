package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/styleforge/styleforge-api/internal/domain"
)

// MemoryTaskStore implements TaskStore with a mutex-guarded map. It is the
// canonical live state of the pipeline; see TaskMirror for durability.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

// Compile-time interface check.
var _ TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty MemoryTaskStore.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Get retrieves a copy of the task with the given ID.
func (s *MemoryTaskStore) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}

	return task.Clone(), nil
}

// Set stores a copy of the task under its ID, replacing any existing record.
func (s *MemoryTaskStore) Set(ctx context.Context, task *domain.Task) error {
	if task.ID == uuid.Nil {
		return domain.ErrEmptyTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = task.Clone()
	return nil
}

// Delete removes the task with the given ID.
func (s *MemoryTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrTaskNotFound
	}

	delete(s.tasks, id)
	return nil
}

// List returns copies of all tasks (optionally filtered by owner),
// sorted by creation time, newest first.
func (s *MemoryTaskStore) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if ownerID != "" && task.OwnerID != ownerID {
			continue
		}
		tasks = append(tasks, task.Clone())
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			// Stable tie-break so pagination never flickers.
			return tasks[i].ID.String() > tasks[j].ID.String()
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

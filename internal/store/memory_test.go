package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/styleforge/styleforge-api/internal/domain"
	"github.com/styleforge/styleforge-api/internal/store"
)

func newStoredTask(t *testing.T, s store.TaskStore, ownerID string, createdAt time.Time) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(uuid.New(), ownerID, "watercolor", "ref.jpg", "")
	require.NoError(t, err)
	task.CreatedAt = createdAt
	task.UpdatedAt = createdAt
	require.NoError(t, s.Set(context.Background(), task))
	return task
}

func TestMemoryTaskStoreGetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemoryTaskStore()

	task := newStoredTask(t, s, "u1", time.Now().UTC())

	got, err := s.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	t.Run("returns copies, not shared state", func(t *testing.T) {
		got.Progress = 75
		again, err := s.Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, again.Progress)
	})

	t.Run("unknown ID returns ErrTaskNotFound", func(t *testing.T) {
		_, err := s.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("rejects nil ID", func(t *testing.T) {
		err := s.Set(ctx, &domain.Task{})
		assert.ErrorIs(t, err, domain.ErrEmptyTaskID)
	})
}

func TestMemoryTaskStoreDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemoryTaskStore()
	task := newStoredTask(t, s, "u1", time.Now().UTC())

	require.NoError(t, s.Delete(ctx, task.ID))

	_, err := s.Get(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	assert.ErrorIs(t, s.Delete(ctx, task.ID), store.ErrTaskNotFound)
}

func TestMemoryTaskStoreList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemoryTaskStore()

	base := time.Now().UTC()
	oldest := newStoredTask(t, s, "u1", base.Add(-2*time.Hour))
	newest := newStoredTask(t, s, "u1", base)
	other := newStoredTask(t, s, "u2", base.Add(-time.Hour))

	t.Run("sorts newest first", func(t *testing.T) {
		tasks, err := s.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, newest.ID, tasks[0].ID)
		assert.Equal(t, other.ID, tasks[1].ID)
		assert.Equal(t, oldest.ID, tasks[2].ID)
	})

	t.Run("filters by owner", func(t *testing.T) {
		tasks, err := s.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		for _, task := range tasks {
			assert.Equal(t, "u1", task.OwnerID)
		}
	})

	t.Run("unknown owner yields empty result", func(t *testing.T) {
		tasks, err := s.List(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestNoopTaskMirror(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := store.NewNoopTaskMirror()

	assert.False(t, m.IsAvailable(ctx))
	assert.NoError(t, m.Save(ctx, &domain.Task{}))
	assert.NoError(t, m.Delete(ctx, uuid.New()))

	tasks, err := m.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

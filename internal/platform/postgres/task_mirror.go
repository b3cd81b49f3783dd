package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/styleforge/styleforge-api/internal/domain"
	"github.com/styleforge/styleforge-api/internal/platform/logger"
	"github.com/styleforge/styleforge-api/internal/store"
)

// TaskMirror implements the store.TaskMirror interface using PostgreSQL.
type TaskMirror struct {
	db *sql.DB
}

var _ store.TaskMirror = (*TaskMirror)(nil)

// NewTaskMirror creates a new TaskMirror on the given connection.
func NewTaskMirror(db *sql.DB) *TaskMirror {
	return &TaskMirror{db: db}
}

// IsAvailable reports whether the database answers a ping within a short
// deadline.
func (m *TaskMirror) IsAvailable(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return m.db.PingContext(pingCtx) == nil
}

// Save upserts the task record. Conflicting writes resolve last-write-wins;
// the mirrored copy is derived state and may lag the in-memory store.
func (m *TaskMirror) Save(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO tasks (
			id, owner_id, template_id, original_image, generated_image,
			status, progress, custom_prompt, error_message,
			created_at, updated_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			generated_image = EXCLUDED.generated_image,
			status = EXCLUDED.status,
			progress = EXCLUDED.progress,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at,
			completed_at = EXCLUDED.completed_at
	`

	_, err := m.db.ExecContext(ctx, query,
		task.ID,
		task.OwnerID,
		task.TemplateID,
		task.OriginalImage,
		nullString(task.GeneratedImage),
		task.Status,
		task.Progress,
		nullString(task.CustomPrompt),
		nullString(task.ErrorMessage),
		task.CreatedAt,
		task.UpdatedAt,
		nullTime(task.CompletedAt),
	)
	if err != nil {
		log.Error("failed to mirror task",
			"task_id", task.ID,
			"status", task.Status,
			"error", err)
		return store.NewStoreError("task", "save", "failed to mirror task", err)
	}

	return nil
}

// Delete removes the mirrored record. Deleting an unknown ID is a no-op.
func (m *TaskMirror) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	if _, err := m.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		log.Error("failed to delete mirrored task",
			"task_id", id,
			"error", err)
		return store.NewStoreError("task", "delete", "failed to delete mirrored task", err)
	}

	return nil
}

// LoadAll returns every mirrored task, used once at startup to warm the
// in-memory store.
func (m *TaskMirror) LoadAll(ctx context.Context) ([]*domain.Task, error) {
	query := `
		SELECT id, owner_id, template_id, original_image, generated_image,
		       status, progress, custom_prompt, error_message,
		       created_at, updated_at, completed_at
		FROM tasks
		ORDER BY created_at DESC
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, store.NewStoreError("task", "load_all", "failed to query mirrored tasks", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "load_all", "failed to scan mirrored task", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "load_all", "failed to iterate mirrored tasks", err)
	}

	return tasks, nil
}

func scanTask(rows *sql.Rows) (*domain.Task, error) {
	var (
		task           domain.Task
		generatedImage sql.NullString
		customPrompt   sql.NullString
		errorMessage   sql.NullString
		completedAt    sql.NullTime
	)

	err := rows.Scan(
		&task.ID,
		&task.OwnerID,
		&task.TemplateID,
		&task.OriginalImage,
		&generatedImage,
		&task.Status,
		&task.Progress,
		&customPrompt,
		&errorMessage,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning task row: %w", err)
	}

	task.GeneratedImage = generatedImage.String
	task.CustomPrompt = customPrompt.String
	task.ErrorMessage = errorMessage.String
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		task.CompletedAt = &t
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	return &task, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

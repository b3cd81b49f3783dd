package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/styleforge/styleforge-api/internal/catalog"
	"github.com/styleforge/styleforge-api/internal/domain"
	"github.com/styleforge/styleforge-api/internal/generation"
	"github.com/styleforge/styleforge-api/internal/storage"
	"github.com/styleforge/styleforge-api/internal/store"
)

// Progress milestones reported while a task moves through processing.
const (
	progressUploaded       = 10
	progressPreparedPrompt = 30
	progressCallingModel   = 50
	progressDownloading    = 90
	progressDone           = 100
)

const (
	mirrorWriteTimeout  = 5 * time.Second
	restoreAttempts     = 3
	restoreRetryDelay   = 500 * time.Millisecond
	resultFetchTimeout  = 30 * time.Second
	defaultListPageSize = 20
	maxListPageSize     = 100
)

// PipelineConfig holds tuning knobs for the pipeline.
type PipelineConfig struct {
	// SimulatorStepDelay is the pause between staged progress updates in
	// the fallback simulator.
	SimulatorStepDelay time.Duration
}

// DefaultPipelineConfig returns a PipelineConfig with reasonable defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		SimulatorStepDelay: 800 * time.Millisecond,
	}
}

// CreateParams are the inputs to CreateTask.
type CreateParams struct {
	OwnerID      string
	TemplateID   string
	CustomPrompt string
	Filename     string
	Image        []byte
}

// TaskView is a task enriched with its template metadata. The join is
// performed on the read side; the stored task is never mutated.
type TaskView struct {
	*domain.Task

	// Template is the resolved template, or nil if it no longer exists.
	Template *domain.Template
}

// Pipeline owns the generation task lifecycle. All task mutations flow
// through its internal updateStatus; callers only see CreateTask, GetTask,
// ListTasks, DeleteTask and RetryTask.
type Pipeline struct {
	tasks     store.TaskStore
	mirror    store.TaskMirror
	images    *storage.ImageStore
	catalog   catalog.Catalog
	generator generation.Generator
	logger    *slog.Logger
	config    PipelineConfig

	// httpClient fetches provider results that are hosted rather than inline.
	httpClient *http.Client

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
	wg       sync.WaitGroup

	// stateMu serializes the get-modify-set cycles of updateStatus and
	// DeleteTask, so a delete cannot slip between an in-flight run's Get
	// and Set and be undone by the stale write.
	stateMu sync.Mutex
}

// NewPipeline creates a Pipeline with the given collaborators.
//
// generator may be nil when no provider is configured; every task then
// completes through the fallback simulator.
func NewPipeline(
	tasks store.TaskStore,
	mirror store.TaskMirror,
	images *storage.ImageStore,
	cat catalog.Catalog,
	generator generation.Generator,
	logger *slog.Logger,
	config PipelineConfig,
) (*Pipeline, error) {
	if tasks == nil {
		return nil, ErrNilStore
	}
	if mirror == nil {
		return nil, ErrNilMirror
	}
	if images == nil {
		return nil, ErrNilImages
	}
	if cat == nil {
		return nil, ErrNilCatalog
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	if config.SimulatorStepDelay <= 0 {
		config.SimulatorStepDelay = DefaultPipelineConfig().SimulatorStepDelay
	}

	return &Pipeline{
		tasks:      tasks,
		mirror:     mirror,
		images:     images,
		catalog:    cat,
		generator:  generator,
		logger:     logger,
		config:     config,
		httpClient: &http.Client{Timeout: resultFetchTimeout},
		inflight:   make(map[uuid.UUID]struct{}),
	}, nil
}

// CreateTask validates the template, stores the uploaded image, records the
// pending task and schedules processing. It returns the pending task
// immediately; execution happens on a detached goroutine.
func (p *Pipeline) CreateTask(ctx context.Context, params CreateParams) (*domain.Task, error) {
	if len(params.Image) == 0 {
		return nil, ErrEmptyImage
	}

	if _, err := p.catalog.GetTemplateByID(ctx, params.TemplateID); err != nil {
		if errors.Is(err, catalog.ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, params.TemplateID)
		}
		return nil, fmt.Errorf("failed to resolve template: %w", err)
	}

	id := uuid.New()
	uploadName := storage.UploadName(id, params.Filename)
	if err := p.images.WriteUpload(uploadName, params.Image); err != nil {
		return nil, fmt.Errorf("failed to store uploaded image: %w", err)
	}

	task, err := domain.NewTask(id, params.OwnerID, params.TemplateID, uploadName, params.CustomPrompt)
	if err != nil {
		p.images.RemoveUpload(uploadName)
		return nil, err
	}

	if err := p.tasks.Set(ctx, task); err != nil {
		p.images.RemoveUpload(uploadName)
		return nil, fmt.Errorf("failed to store task: %w", err)
	}

	p.persistAsync(task)

	p.logger.Info("task created",
		"task_id", task.ID,
		"template_id", task.TemplateID,
		"owner_id", task.OwnerID,
		"upload_bytes", len(params.Image))

	p.schedule(task.ID)
	return task, nil
}

// GetTask returns the task joined with its template metadata.
// Returns ErrTaskNotFound for unknown IDs.
func (p *Pipeline) GetTask(ctx context.Context, id uuid.UUID) (*TaskView, error) {
	task, err := p.tasks.Get(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return p.enrich(ctx, task), nil
}

// ListTasks returns a page of tasks (newest first), each joined with its
// template metadata, plus the total count before pagination. An empty
// ownerID lists every task.
func (p *Pipeline) ListTasks(ctx context.Context, ownerID string, page, limit int) ([]*TaskView, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultListPageSize
	}
	if limit > maxListPageSize {
		limit = maxListPageSize
	}

	tasks, err := p.tasks.List(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}

	total := len(tasks)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	views := make([]*TaskView, 0, end-start)
	for _, task := range tasks[start:end] {
		views = append(views, p.enrich(ctx, task))
	}

	return views, total, nil
}

// DeleteTask removes the task, its image files and its mirrored record.
// File cleanup is best-effort: the deletion succeeds even if it partially
// fails. Returns false if the ID was unknown.
func (p *Pipeline) DeleteTask(ctx context.Context, id uuid.UUID) (bool, error) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	task, err := p.tasks.Get(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	p.images.RemoveUpload(task.OriginalImage)
	if task.GeneratedImage != "" {
		p.images.RemoveGenerated(task.GeneratedImage)
	}

	if err := p.tasks.Delete(ctx, id); err != nil && !store.IsNotFoundError(err) {
		return false, err
	}

	p.deleteMirrorAsync(id)

	p.logger.Info("task deleted", "task_id", id)
	return true, nil
}

// RetryTask re-submits a failed task for processing under the same ID. The
// error message is cleared and progress reset before the new run starts.
func (p *Pipeline) RetryTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := p.tasks.Get(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if task.Status == domain.TaskStatusProcessing || p.isInflight(id) {
		return nil, ErrTaskProcessing
	}

	if task.Status != domain.TaskStatusFailed {
		return nil, ErrTaskNotRetryable
	}

	progress := 0
	cleared := ""
	task, err = p.updateStatus(ctx, id, domain.TaskStatusPending, statusUpdate{
		progress:     &progress,
		errorMessage: &cleared,
	})
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	p.logger.Info("task retry requested", "task_id", id)
	p.schedule(id)
	return task, nil
}

// Restore warms the in-memory store from the mirror. It retries a bounded
// number of times and, if the mirror stays unavailable, returns nil so the
// service runs memory-only. Tasks that were mid-processing when the
// previous process died are marked failed (and therefore retryable).
func (p *Pipeline) Restore(ctx context.Context) error {
	var (
		restored []*domain.Task
		err      error
	)

	for attempt := 1; attempt <= restoreAttempts; attempt++ {
		restored, err = p.mirror.LoadAll(ctx)
		if err == nil {
			break
		}

		p.logger.Warn("task mirror unavailable during restore",
			"attempt", attempt,
			"max_attempts", restoreAttempts,
			"error", err)

		if attempt < restoreAttempts {
			select {
			case <-time.After(restoreRetryDelay):
			case <-ctx.Done():
				return nil
			}
		}
	}

	if err != nil {
		p.logger.Warn("proceeding memory-only, task mirror did not recover")
		return nil
	}

	interrupted := 0
	for _, task := range restored {
		if task.Status == domain.TaskStatusProcessing {
			now := time.Now().UTC()
			task.Status = domain.TaskStatusFailed
			task.Progress = 0
			task.ErrorMessage = "processing interrupted by restart"
			task.UpdatedAt = now
			task.CompletedAt = &now
			interrupted++
			p.persistAsync(task)
		}

		if err := p.tasks.Set(ctx, task); err != nil {
			p.logger.Error("failed to restore task", "task_id", task.ID, "error", err)
		}
	}

	p.logger.Info("task store warmed from mirror",
		"restored", len(restored),
		"interrupted", interrupted)
	return nil
}

// Close waits for in-flight processing runs and pending mirror writes.
func (p *Pipeline) Close() {
	p.wg.Wait()
}

// schedule starts the detached processing run for the task, guarded so at
// most one run is ever active per task ID.
func (p *Pipeline) schedule(id uuid.UUID) {
	p.mu.Lock()
	if _, active := p.inflight[id]; active {
		p.mu.Unlock()
		p.logger.Warn("processing already in flight, not scheduling", "task_id", id)
		return
	}
	p.inflight[id] = struct{}{}
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.release(id)
		p.process(id)
	}()
}

func (p *Pipeline) release(id uuid.UUID) {
	p.mu.Lock()
	delete(p.inflight, id)
	p.mu.Unlock()
}

func (p *Pipeline) isInflight(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, active := p.inflight[id]
	return active
}

// process drives one task run to a terminal state. It never propagates an
// error: provider failures route to the fallback simulator and anything
// unexpected transitions the task to failed.
func (p *Pipeline) process(id uuid.UUID) {
	// Detached from the creating request on purpose; the caller does not
	// await processing.
	ctx := context.Background()
	log := p.logger.With("task_id", id)

	defer func() {
		if r := recover(); r != nil {
			log.Error("unexpected panic during task processing", "panic", r)
			p.fail(ctx, id, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	task, err := p.updateStatus(ctx, id, domain.TaskStatusProcessing, progressOnly(progressUploaded))
	if err != nil || task == nil {
		log.Error("failed to enter processing state", "error", err)
		return
	}

	log.Info("processing started", "template_id", task.TemplateID)

	template, err := p.catalog.GetTemplateByID(ctx, task.TemplateID)
	if err != nil {
		log.Error("template no longer resolvable", "template_id", task.TemplateID, "error", err)
		p.fail(ctx, id, fmt.Sprintf("template %q not found", task.TemplateID))
		return
	}

	imageData, err := p.images.ReadUpload(task.OriginalImage)
	if err != nil {
		log.Error("original image unreadable", "image", task.OriginalImage, "error", err)
		p.fail(ctx, id, "original image is missing or unreadable")
		return
	}

	if _, err := p.updateStatus(ctx, id, domain.TaskStatusProcessing, progressOnly(progressPreparedPrompt)); err != nil {
		log.Error("failed to update progress", "error", err)
	}

	prompt := task.CustomPrompt
	if prompt == "" {
		prompt = template.Prompt
	}

	if _, err := p.updateStatus(ctx, id, domain.TaskStatusProcessing, progressOnly(progressCallingModel)); err != nil {
		log.Error("failed to update progress", "error", err)
	}

	if p.generator == nil {
		log.Info("no provider configured, completing via simulation")
		p.simulate(ctx, id, log)
		return
	}

	result, err := p.generator.Generate(ctx, imageData, prompt)
	if err != nil {
		// Provider failures are recovered, not surfaced: the simulator
		// still delivers a completed task to the user.
		log.Warn("provider call failed, falling back to simulation",
			"category", generation.Category(err),
			"error", err)
		p.simulate(ctx, id, log)
		return
	}

	if _, err := p.updateStatus(ctx, id, domain.TaskStatusProcessing, progressOnly(progressDownloading)); err != nil {
		log.Error("failed to update progress", "error", err)
	}

	generatedRef, err := p.persistResult(ctx, id, result, log)
	if err != nil {
		log.Error("failed to persist generated image", "error", err)
		p.fail(ctx, id, "failed to store generated image")
		return
	}

	p.complete(ctx, id, generatedRef)
	log.Info("task completed", "generated_image", generatedRef)
}

// persistResult lands the provider output in image storage. Hosted results
// that cannot be downloaded are non-fatal: the remote URL itself becomes
// the generated reference.
func (p *Pipeline) persistResult(ctx context.Context, id uuid.UUID, result *generation.Result, log *slog.Logger) (string, error) {
	name := storage.GeneratedName(id)

	if len(result.ImageData) > 0 {
		if err := p.images.WriteGenerated(name, result.ImageData); err != nil {
			return "", err
		}
		return name, nil
	}

	if result.URL == "" {
		return "", fmt.Errorf("%w: result carries neither image data nor URL", generation.ErrInvalidResponse)
	}

	data, err := p.fetchResult(ctx, result.URL)
	if err != nil {
		log.Warn("could not download hosted result, using remote URL as reference",
			"url", result.URL,
			"error", err)
		return result.URL, nil
	}

	if err := p.images.WriteGenerated(name, data); err != nil {
		log.Warn("could not store downloaded result, using remote URL as reference",
			"url", result.URL,
			"error", err)
		return result.URL, nil
	}

	return name, nil
}

// fetchResult downloads a hosted provider result.
func (p *Pipeline) fetchResult(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading result: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading result: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading result body: %w", err)
	}

	return data, nil
}

// complete transitions the task to completed with the generated reference.
func (p *Pipeline) complete(ctx context.Context, id uuid.UUID, generatedRef string) {
	progress := progressDone
	if _, err := p.updateStatus(ctx, id, domain.TaskStatusCompleted, statusUpdate{
		progress:       &progress,
		generatedImage: &generatedRef,
	}); err != nil {
		p.logger.Error("failed to finalize task", "task_id", id, "error", err)
	}
}

// fail transitions the task to failed with the given message, resetting
// progress and clearing any generated reference. A failed task never
// carries a generated image.
func (p *Pipeline) fail(ctx context.Context, id uuid.UUID, message string) {
	progress := 0
	cleared := ""
	if _, err := p.updateStatus(ctx, id, domain.TaskStatusFailed, statusUpdate{
		progress:       &progress,
		generatedImage: &cleared,
		errorMessage:   &message,
	}); err != nil {
		p.logger.Error("failed to mark task failed", "task_id", id, "error", err)
	}
}

// statusUpdate carries the optional fields of an updateStatus call; nil
// fields are left untouched.
type statusUpdate struct {
	progress       *int
	generatedImage *string
	errorMessage   *string
}

func progressOnly(progress int) statusUpdate {
	return statusUpdate{progress: &progress}
}

// updateStatus is the single mutation point for task state. It refreshes
// UpdatedAt on every call, keeps progress non-decreasing within a
// processing run, stamps CompletedAt on each entry into a terminal state,
// and mirrors the new state fire-and-forget.
//
// An unknown ID is a logged no-op returning a nil task; in particular a
// task deleted while its run is in flight stays deleted.
func (p *Pipeline) updateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus, upd statusUpdate) (*domain.Task, error) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	task, err := p.tasks.Get(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			p.logger.Debug("updateStatus for unknown task", "task_id", id, "status", status)
			return nil, nil
		}
		return nil, err
	}

	now := time.Now().UTC()

	if upd.progress != nil {
		progress := *upd.progress
		// Progress never moves backwards while a run is in flight.
		if status == domain.TaskStatusProcessing && task.Status == domain.TaskStatusProcessing &&
			progress < task.Progress {
			progress = task.Progress
		}
		task.Progress = progress
	}

	if upd.generatedImage != nil {
		task.GeneratedImage = *upd.generatedImage
	}

	if upd.errorMessage != nil {
		task.ErrorMessage = *upd.errorMessage
	}

	if status.IsTerminal() && !task.Status.IsTerminal() {
		task.CompletedAt = &now
	}

	task.Status = status
	task.UpdatedAt = now

	if err := p.tasks.Set(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to store task update: %w", err)
	}

	p.persistAsync(task)
	return task, nil
}

// enrich joins a task with its template metadata without mutating the
// stored task. A vanished template yields a nil Template, not an error.
func (p *Pipeline) enrich(ctx context.Context, task *domain.Task) *TaskView {
	view := &TaskView{Task: task}

	template, err := p.catalog.GetTemplateByID(ctx, task.TemplateID)
	if err == nil {
		view.Template = template
	}

	return view
}

// persistAsync mirrors the task without blocking or failing the caller.
func (p *Pipeline) persistAsync(task *domain.Task) {
	snapshot := task.Clone()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
		defer cancel()

		// Mirror errors are logged by the mirror itself; nothing to do here.
		_ = p.mirror.Save(ctx, snapshot)
	}()
}

// deleteMirrorAsync removes the mirrored record without blocking the caller.
func (p *Pipeline) deleteMirrorAsync(id uuid.UUID) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
		defer cancel()

		_ = p.mirror.Delete(ctx, id)
	}()
}

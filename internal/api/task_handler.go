package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/styleforge/styleforge-api/internal/api/shared"
	"github.com/styleforge/styleforge-api/internal/storage"
	"github.com/styleforge/styleforge-api/internal/task"
)

// maxUploadBytes caps the accepted reference image size.
const maxUploadBytes = 10 << 20 // 10 MiB

// maxPromptLength caps the optional custom prompt.
const maxPromptLength = 2000

// createTaskRequest carries the non-file fields of the multipart create
// form.
type createTaskRequest struct {
	TemplateID string
	Prompt     string
}

// Validate reports the first problem with the request. Messages are safe
// to return to the client.
func (req createTaskRequest) Validate() error {
	if req.TemplateID == "" {
		return errors.New("template_id is required")
	}
	if len(req.Prompt) > maxPromptLength {
		return fmt.Errorf("prompt exceeds %d characters", maxPromptLength)
	}
	return nil
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	pipeline *task.Pipeline
	images   *storage.ImageStore
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(pipeline *task.Pipeline, images *storage.ImageStore) *TaskHandler {
	return &TaskHandler{
		pipeline: pipeline,
		images:   images,
	}
}

// CreateTask handles POST /api/tasks. It accepts a multipart form with an
// "image" file, a "template_id" field and an optional "prompt" field, and
// responds 202 Accepted with the pending task.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	req := createTaskRequest{
		TemplateID: r.FormValue("template_id"),
		Prompt:     r.FormValue("prompt"),
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "An image file is required")
		return
	}
	defer func() { _ = file.Close() }()

	imageData, err := io.ReadAll(file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Failed to read uploaded image", err)
		return
	}

	created, err := h.pipeline.CreateTask(r.Context(), task.CreateParams{
		OwnerID:      shared.GetOwnerID(r.Context()),
		TemplateID:   req.TemplateID,
		CustomPrompt: req.Prompt,
		Filename:     header.Filename,
		Image:        imageData,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// 202: the task is accepted, generation continues in the background.
	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(created))
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	view, err := h.pipeline.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if !h.visibleTo(r, view.OwnerID) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, viewToResponse(view))
}

// ListTasks handles GET /api/tasks with optional page and limit query
// parameters. Authenticated requests see only their own tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	views, total, err := h.pipeline.ListTasks(r.Context(), shared.GetOwnerID(r.Context()), page, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	tasks := make([]TaskResponse, 0, len(views))
	for _, view := range views {
		tasks = append(tasks, viewToResponse(view))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	view, err := h.pipeline.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if !h.visibleTo(r, view.OwnerID) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	deleted, err := h.pipeline.DeleteTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to delete task", err)
		return
	}
	if !deleted {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RetryTask handles POST /api/tasks/{id}/retry, re-submitting a failed
// task under the same ID.
func (h *TaskHandler) RetryTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	view, err := h.pipeline.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if !h.visibleTo(r, view.OwnerID) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	retried, err := h.pipeline.RetryTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(retried))
}

// GetTaskImage handles GET /api/tasks/{id}/image, serving the generated
// result. Hosted results redirect to the provider URL.
func (h *TaskHandler) GetTaskImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	view, err := h.pipeline.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if !h.visibleTo(r, view.OwnerID) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	if view.GeneratedImage == "" {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task has no generated image yet")
		return
	}

	if strings.HasPrefix(view.GeneratedImage, "http://") || strings.HasPrefix(view.GeneratedImage, "https://") {
		http.Redirect(w, r, view.GeneratedImage, http.StatusFound)
		return
	}

	data, err := h.images.ReadGenerated(view.GeneratedImage)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, "Generated image not found", err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "task_id", id, "error", err)
	}
}

// taskID parses the {id} route parameter, responding 400 if malformed.
func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return id, true
}

// visibleTo reports whether the request's owner may see a task owned by
// taskOwner. Anonymous requests and ownerless tasks are unrestricted.
func (h *TaskHandler) visibleTo(r *http.Request, taskOwner string) bool {
	requestOwner := shared.GetOwnerID(r.Context())
	if requestOwner == "" || taskOwner == "" {
		return true
	}
	return requestOwner == taskOwner
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

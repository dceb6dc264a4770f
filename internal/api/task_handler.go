package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Thinkabouthev/backend-hw2/internal/api/shared"
	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// TaskHandler handles task CRUD API requests. All endpoints require an
// authenticated user; a task owned by another user is reported as not found
// rather than forbidden, so task IDs cannot be probed.
type TaskHandler struct {
	taskStore store.TaskStore
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskStore store.TaskStore) *TaskHandler {
	return &TaskHandler{
		taskStore: taskStore,
		validator: validator.New(),
	}
}

// Create handles the POST /tasks endpoint.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := domain.NewTask(userID, req.Title, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		slog.Error("failed to create task", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles the GET /tasks endpoint with skip/limit pagination.
// Only tasks owned by the authenticated user are returned; unowned tasks
// created by the background fetch job are not visible here.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	skip, limit := getPagination(r)

	tasks, err := h.taskStore.ListByOwner(r.Context(), userID, skip, limit)
	if err != nil {
		slog.Error("failed to list tasks", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// Get handles the GET /tasks/{taskID} endpoint.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles the PUT /tasks/{taskID} endpoint.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Completed = req.Completed

	if err := task.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles the DELETE /tasks/{taskID} endpoint.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), task.ID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// loadOwnedTask extracts the authenticated user and path task ID, loads the
// task, and enforces ownership. On failure it writes the error response and
// returns ok=false. Tasks that exist but belong to someone else (or to no
// one) are reported as not found.
func (h *TaskHandler) loadOwnedTask(
	w http.ResponseWriter,
	r *http.Request,
) (*domain.Task, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return nil, false
	}

	taskID, err := getPathUUID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return nil, false
		}
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	if !task.OwnedBy(userID) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return nil, false
	}

	return task, true
}

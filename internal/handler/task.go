// Package handler defines HTTP handlers for the authenticated task
// endpoints. Every handler resolves the caller from the context, never
// from the request body, so a task can only ever be read or mutated by
// its owner. Lookups that miss, including lookups of tasks owned by
// someone else, answer 404.
package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lmills91/task-manager/internal/model"
	"github.com/lmills91/task-manager/internal/queue"
	"github.com/lmills91/task-manager/internal/repository"
	queue_publisher "github.com/lmills91/task-manager/internal/service"
)

// TaskHandler bundles the repositories the task endpoints need.
type TaskHandler struct {
	Users *repository.UserRepo
	Tasks *repository.TaskRepo
}

func NewTaskHandler(u *repository.UserRepo, t *repository.TaskRepo) *TaskHandler {
	return &TaskHandler{Users: u, Tasks: t}
}

// ----- DTOs -----

type createTaskReq struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

type updateTaskReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	OwnerID     *uint64    `json:"owner_id"`
}

type taskResp struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Deleted     bool       `json:"deleted"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OwnerID     uint64     `json:"owner_id"`
}

func toTaskResp(t model.Task) taskResp {
	return taskResp{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Deleted:     t.Deleted,
		DueDate:     t.DueDate,
		OwnerID:     t.OwnerID,
	}
}

// CreateTask handles POST /v1/tasks. The caller becomes the owner.
// Status defaults to Pending; any value outside the enum is rejected
// before anything is written. The owner is validated against the user
// directory so tasks never reference a missing user. Creation writes
// no history entry.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	if req.Status != "" && !model.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of Pending, Doing, Blocked, Done"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Ensure the owner exists before creating the task.
	if _, err := h.Users.GetByID(ctx, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	t := model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		OwnerID:     ownerID,
	}
	if err := h.Tasks.Create(ctx, &t); err != nil {
		if err == model.ErrInvalidStatus {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of Pending, Doing, Blocked, Done"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create task failed"})
	}
	return c.JSON(http.StatusCreated, toTaskResp(t))
}

// ListTasks handles GET /v1/tasks. It returns the caller's active
// tasks only; deleted tasks stay hidden until restored.
func (h *TaskHandler) ListTasks(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.Tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]taskResp, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// GetTask handles GET /v1/tasks/:id. A task that does not exist and a
// task owned by another user produce the same 404.
func (h *TaskHandler) GetTask(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.GetByIDForOwner(ctx, id, ownerID, false)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found for current user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// UpdateTask handles PUT /v1/tasks/:id with merge-patch semantics:
// only fields present in the body change, everything else keeps its
// value, and the deleted flag is not reachable from here. Field
// updates are not audited.
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.Update(ctx, id, ownerID, repository.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		switch err {
		case model.ErrInvalidStatus:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of Pending, Doing, Blocked, Done"})
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found for current user"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// DeleteTask handles DELETE /v1/tasks/:id. The task is soft-deleted:
// the flag flips and one "Deleted" history entry commits in the same
// transaction. The task can be restored later. Returns 204.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Look up the active task first so a missing or foreign task 404s
	// before any write.
	if _, err := h.Tasks.GetByIDForOwner(ctx, id, ownerID, false); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found for current user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	t, err := h.Tasks.SetDeleted(ctx, id, ownerID, true)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found for current user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	publishAudit(c, t, model.ActionDeleted)
	return c.NoContent(http.StatusNoContent)
}

// RestoreTask handles PATCH /v1/tasks/restore/:id. It finds the
// caller's currently-deleted task, flips it back to active and writes
// one "Restored" history entry in the same transaction. Returns the
// restored task.
func (h *TaskHandler) RestoreTask(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Restore looks among deleted tasks, the opposite polarity of
	// every other lookup.
	if _, err := h.Tasks.GetByIDForOwner(ctx, id, ownerID, true); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found for current user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	t, err := h.Tasks.SetDeleted(ctx, id, ownerID, false)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found for current user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "restore failed"})
	}
	publishAudit(c, t, model.ActionRestored)
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// publishAudit sends a TaskAuditEvent to the broker after a commit.
// Publishing is best-effort: the history row is already durable, so a
// broker outage must not fail the request.
func publishAudit(c echo.Context, t model.Task, action string) {
	ev := queue.TaskAuditEvent{
		TaskID:     t.ID,
		OwnerID:    t.OwnerID,
		Action:     action,
		Title:      t.Title,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	_ = queue_publisher.PublishTaskAudit(c.Request().Context(), ev)
}

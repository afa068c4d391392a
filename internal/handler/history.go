package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lmills91/task-manager/internal/repository"
)

// HistoryHandler serves the audit trail read path. The engine only
// appends to history; this handler exists so owners can review the
// delete/restore record of their own tasks.
type HistoryHandler struct {
	History *repository.HistoryRepo
}

func NewHistoryHandler(h *repository.HistoryRepo) *HistoryHandler {
	return &HistoryHandler{History: h}
}

type historyResp struct {
	ID          uint64    `json:"id"`
	DateCreated time.Time `json:"date_created"`
	Action      string    `json:"action"`
	OwnerID     uint64    `json:"owner_id"`
	TaskID      uint64    `json:"task_id"`
}

// ListHistory handles GET /v1/history. Entries are scoped to the
// caller and ordered newest first.
func (h *HistoryHandler) ListHistory(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.History.ListByOwner(ctx, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]historyResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyResp{
			ID:          e.ID,
			DateCreated: e.DateCreated,
			Action:      e.Action,
			OwnerID:     e.OwnerID,
			TaskID:      e.TaskID,
		})
	}
	return c.JSON(http.StatusOK, out)
}

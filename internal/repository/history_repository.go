package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lmills91/task-manager/internal/model"
)

// HistoryRepo manages the append-only audit trail of task delete and
// restore actions. Writes only happen inside an existing transaction
// so that a task's flag change and its audit entry commit together.
// Rows are never updated or deleted once written.
type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

// AppendTx inserts a history entry within the scope of an existing
// transaction and populates the generated ID on the provided record.
// The caller must commit or rollback the transaction. The action is
// validated before the insert so an invalid entry never reaches the
// store.
func (r *HistoryRepo) AppendTx(ctx context.Context, tx *sql.Tx, h *model.History) error {
	if !model.ValidAction(h.Action) {
		return model.ErrInvalidAction
	}
	if h.DateCreated.IsZero() {
		h.DateCreated = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO history (date_created, action, owner_id, task_id) VALUES (?,?,?,?)",
		h.DateCreated, h.Action, h.OwnerID, h.TaskID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// ListByOwner returns the audit entries recorded for the given owner's
// tasks, newest first. This read path exists for reporting; the engine
// itself only ever appends.
func (r *HistoryRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.History, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,date_created,action,owner_id,task_id FROM history WHERE owner_id=? ORDER BY date_created DESC, id DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.History, 0)
	for rows.Next() {
		var h model.History
		if err := rows.Scan(&h.ID, &h.DateCreated, &h.Action, &h.OwnerID, &h.TaskID); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

package model

import (
	"errors"
	"time"
)

// History actions. The task engine only ever emits Deleted and
// Restored; the remaining two values exist in the schema enum for
// external reporting tools and are accepted by validation.
const (
	ActionDeleted       = "Deleted"
	ActionRestored      = "Restored"
	ActionStatusUpdate  = "Status Update"
	ActionChangeDetails = "Change Details"
)

// ErrInvalidAction is returned when a history action is not one of
// the enumerated values.
var ErrInvalidAction = errors.New("invalid history action")

// ValidAction reports whether a is one of the allowed history actions.
func ValidAction(a string) bool {
	switch a {
	case ActionDeleted, ActionRestored, ActionStatusUpdate, ActionChangeDetails:
		return true
	}
	return false
}

// History represents a row in the `history` table. Rows are
// append-only: the engine writes exactly one entry per delete or
// restore of a task, in the same transaction as the flag change,
// and entries are never updated or removed afterwards.
//
// Fields:
//  ID          – primary key identifier.
//  DateCreated – when the entry was written; non-decreasing per task.
//  Action      – what happened (Deleted, Restored, ...).
//  OwnerID     – owner of the task at the time of the action.
//  TaskID      – the task the action applied to.
type History struct {
	ID          uint64    // history.id
	DateCreated time.Time // history.date_created
	Action      string    // history.action
	OwnerID     uint64    // history.owner_id
	TaskID      uint64    // history.task_id
}

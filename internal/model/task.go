package model

import (
	"errors"
	"time"
)

// Task statuses. A task is always in exactly one of these four
// states; any other value is rejected before it reaches the store.
const (
	StatusPending = "Pending"
	StatusDoing   = "Doing"
	StatusBlocked = "Blocked"
	StatusDone    = "Done"
)

// ErrInvalidStatus is returned when a supplied status is outside the
// four-value enumeration.
var ErrInvalidStatus = errors.New("invalid task status")

// ValidStatus reports whether s is one of the allowed task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusDoing, StatusBlocked, StatusDone:
		return true
	}
	return false
}

// Task represents a row in the `tasks` table. A task belongs to
// exactly one user and is never physically removed: deletion only
// flips the Deleted flag, and the task can be restored later.
// A task is "active" iff Deleted is false.
//
// Fields:
//  ID          – primary key identifier of the task.
//  Title       – short human readable title.
//  Description – optional longer description (nullable).
//  Status      – one of Pending, Doing, Blocked, Done.
//  Deleted     – soft-delete flag; false means active.
//  DueDate     – optional due timestamp (nullable).
//  OwnerID     – foreign key into users.id.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Task struct {
	ID          uint64     // tasks.id
	Title       string     // tasks.title
	Description *string    // tasks.description (nullable)
	Status      string     // tasks.status
	Deleted     bool       // tasks.deleted
	DueDate     *time.Time // tasks.due_date (nullable)
	OwnerID     uint64     // tasks.owner_id
	CreatedAt   time.Time  // tasks.created_at
	UpdatedAt   time.Time  // tasks.updated_at
}

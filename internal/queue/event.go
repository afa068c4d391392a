// Package queue defines message payloads exchanged over the message broker.
package queue

// TaskAuditEvent is published after a task delete or restore commits.
// The durable history row is the source of truth; this event lets
// downstream consumers log or notify without querying the primary
// database. Action is "Deleted" or "Restored".
type TaskAuditEvent struct {
	TaskID     uint64 `json:"task_id"`
	OwnerID    uint64 `json:"owner_id"`
	Action     string `json:"action"`
	Title      string `json:"title"`
	OccurredAt string `json:"occurred_at"`
}

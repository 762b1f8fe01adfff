// Package queue defines message payloads exchanged over the message broker.
package queue

// ActivityQueue is the durable queue that carries ActivityEvent messages.
const ActivityQueue = "activity.events"

// Activity kinds.
const (
	DayCreated   = "day.created"
	DayDeleted   = "day.deleted"
	TaskCreated  = "task.created"
	TaskUpdated  = "task.updated"
	TaskDeleted  = "task.deleted"
	TasksCleared = "tasks.cleared"
)

// ActivityEvent is published after a successful write on a day or task.  It
// carries enough context for the activity log without a database lookup.
type ActivityEvent struct {
	Kind       string  `json:"kind"`
	UserID     string  `json:"user_id"`
	DayID      string  `json:"day_id,omitempty"`
	Date       string  `json:"date,omitempty"`
	TaskID     string  `json:"task_id,omitempty"`
	Title      string  `json:"title,omitempty"`
	Hours      float64 `json:"hours,omitempty"`
	Count      int64   `json:"count,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}

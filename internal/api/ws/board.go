package ws

import "github.com/google/uuid"

// Event types published on a user's board channel.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskMoved   = "task_moved"
	EventTaskDeleted = "task_deleted"
)

// BoardEvent represents a real-time board update pushed to a user's other
// devices. Data carries the wire-form task for created/updated/moved events.
type BoardEvent struct {
	Type   string    `json:"type"`
	TaskID uuid.UUID `json:"task_id"`
	Data   any       `json:"data,omitempty"`
}

package board

import (
	"github.com/google/uuid"

	"github.com/weekplan/weekplan/internal/domain"
)

// Mutation is one board change. Every mutation is applied to the local store
// synchronously and persisted asynchronously; Compensable reports whether a
// failed persist rolls the store back to the pre-mutation snapshot.
//
// Delete and BulkClear are deliberately not compensated: the client-side
// removal is permanent regardless of server outcome, matching the accepted
// delete-is-eventually-consistent behavior.
type Mutation interface {
	// MutationID keys the in-flight registry.
	MutationID() uuid.UUID
	Compensable() bool
}

// Create adds a task carrying a temporary, timestamp-derived client id. The
// record is swapped for the server-assigned one on first successful persist.
type Create struct {
	ID   uuid.UUID
	Task *domain.Task
}

// Toggle flips a task's completed flag.
type Toggle struct {
	ID        uuid.UUID
	TaskID    uuid.UUID
	Completed bool
}

// Rename replaces a task's title.
type Rename struct {
	ID     uuid.UUID
	TaskID uuid.UUID
	Title  string
}

// Move assigns a task to a column at a freshly computed position. OverID, when
// set, names the task the card was dropped onto; the store uses it to keep
// array order (the tie-break for equal positions) in sync with the drop.
type Move struct {
	ID       uuid.UUID
	TaskID   uuid.UUID
	OverID   uuid.UUID
	ColumnID domain.ColumnID
	Position float64
}

// ReplaceSubtasks swaps a task's subtask list wholesale. Subtasks are
// append/remove-only and never enter the positional engine.
type ReplaceSubtasks struct {
	ID       uuid.UUID
	TaskID   uuid.UUID
	Subtasks []domain.Subtask
}

// Delete removes a task. Not compensated on failure.
type Delete struct {
	ID     uuid.UUID
	TaskID uuid.UUID
}

// BulkClear removes every completed task in one (workspace, column) group.
// TaskIDs snapshots the ids being cleared so the gateway can address each row
// after the local removal. Not compensated on failure.
type BulkClear struct {
	ID        uuid.UUID
	Workspace domain.Workspace
	ColumnID  domain.ColumnID
	TaskIDs   []uuid.UUID
}

func (m Create) MutationID() uuid.UUID          { return m.ID }
func (m Toggle) MutationID() uuid.UUID          { return m.ID }
func (m Rename) MutationID() uuid.UUID          { return m.ID }
func (m Move) MutationID() uuid.UUID            { return m.ID }
func (m ReplaceSubtasks) MutationID() uuid.UUID { return m.ID }
func (m Delete) MutationID() uuid.UUID          { return m.ID }
func (m BulkClear) MutationID() uuid.UUID       { return m.ID }

func (Create) Compensable() bool          { return true }
func (Toggle) Compensable() bool          { return true }
func (Rename) Compensable() bool          { return true }
func (Move) Compensable() bool            { return true }
func (ReplaceSubtasks) Compensable() bool { return true }
func (Delete) Compensable() bool          { return false }
func (BulkClear) Compensable() bool       { return false }

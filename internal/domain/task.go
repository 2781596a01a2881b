package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ColumnID names a board lane. The set is fixed and ordered; tasks are
// positioned per (workspace, column) group, never globally.
type ColumnID string

const (
	ColumnToday    ColumnID = "today"
	ColumnTomorrow ColumnID = "tomorrow"
	ColumnWeek     ColumnID = "week"
	ColumnMonth    ColumnID = "month"
	ColumnLater    ColumnID = "later"
)

// Columns lists all lanes in display order.
var Columns = []ColumnID{ColumnToday, ColumnTomorrow, ColumnWeek, ColumnMonth, ColumnLater}

// Valid reports whether c is one of the known lanes.
func (c ColumnID) Valid() bool {
	switch c {
	case ColumnToday, ColumnTomorrow, ColumnWeek, ColumnMonth, ColumnLater:
		return true
	default:
		return false
	}
}

// Workspace is the tenant-local partition tag separating the two independent
// task sets each user keeps ("pro" / "perso").
type Workspace string

const (
	WorkspacePro   Workspace = "pro"
	WorkspacePerso Workspace = "perso"
)

func (w Workspace) Valid() bool {
	return w == WorkspacePro || w == WorkspacePerso
}

// Subtask is an append/remove-only child item. Subtasks carry no position and
// are not subject to the board's fractional ordering.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a single board card. Position is a real-valued sort key within the
// (workspace, column) group; values need not be contiguous or integral, and
// ties fall back to insertion order.
type Task struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	ColumnID  ColumnID  `json:"columnId"`
	Workspace Workspace `json:"type"`
	Completed bool      `json:"completed"`
	Position  float64   `json:"position"`
	Subtasks  []Subtask `json:"subtasks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskPatch is a partial update for an id-addressed task. Nil fields are left
// untouched. There is deliberately no UserID field: ownership is never
// client-settable.
type TaskPatch struct {
	Title     *string
	ColumnID  *ColumnID
	Workspace *Workspace
	Completed *bool
	Position  *float64
	Subtasks  *[]Subtask
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch TaskPatch) (*Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

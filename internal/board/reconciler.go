package board

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/weekplan/weekplan/internal/domain"
)

// DragState is the reconciler's position in the drag gesture state machine.
type DragState int

const (
	// Idle means no gesture is active.
	Idle DragState = iota
	// Dragging means a task has been picked up and may be re-homed visually.
	Dragging
	// Committing means a drop is being resolved into a persisted move.
	Committing
)

// DropTarget is what the pointer is over when a gesture progresses: either a
// column lane directly, or a task whose column becomes the destination.
type DropTarget struct {
	TaskID   uuid.UUID
	ColumnID domain.ColumnID
	IsColumn bool
}

// Reconciler interprets drag gestures into column assignments and positions.
// It owns no task state: everything it decides is derived from the store and
// handed back to it, plus one dispatched persistence call per committed move.
type Reconciler struct {
	store    *Store
	dispatch *Dispatcher

	state  DragState
	active uuid.UUID
}

func NewReconciler(store *Store, dispatch *Dispatcher) *Reconciler {
	return &Reconciler{store: store, dispatch: dispatch}
}

// State returns the current gesture state.
func (r *Reconciler) State() DragState {
	return r.state
}

// DragStart captures the task being moved. No side effects.
func (r *Reconciler) DragStart(taskID uuid.UUID) {
	if r.store.Get(taskID) == nil {
		return
	}
	r.state = Dragging
	r.active = taskID
}

// DragOver pre-applies a visual column re-assignment so the board reflows as
// the pointer crosses lane boundaries. This optimistic step is UI-only; the
// position is left untouched and nothing is persisted until DragEnd.
func (r *Reconciler) DragOver(target DropTarget) {
	if r.state != Dragging {
		return
	}
	col, ok := r.resolveColumn(target)
	if !ok {
		return
	}
	active := r.store.Get(r.active)
	if active == nil || active.ColumnID == col {
		return
	}
	r.store.relocateColumn(r.active, col)
}

// DragEnd resolves the drop into a final (column, position) pair, applies it
// optimistically and dispatches the persist. The machine returns to Idle
// regardless of outcome; a failed persist rolls the store back afterwards.
//
// Dropping a task onto itself, or ending with no valid target, is a no-op
// with zero mutations and zero network calls.
func (r *Reconciler) DragEnd(ctx context.Context, target DropTarget) {
	if r.state != Dragging {
		return
	}
	defer func() {
		r.state = Idle
		r.active = uuid.Nil
	}()

	if !target.IsColumn && (target.TaskID == uuid.Nil || target.TaskID == r.active) {
		return
	}

	active := r.store.Get(r.active)
	if active == nil {
		return
	}
	col, ok := r.resolveColumn(target)
	if !ok {
		return
	}

	r.state = Committing

	// Provisionally relocate the active task into the destination group and
	// find the index it lands on, then let the codec derive the key.
	group, idx := r.provisionalGroup(active, target, col)
	if idx == -1 {
		return
	}
	position := PositionFor(group, idx)

	m := Move{
		ID:       uuid.New(),
		TaskID:   r.active,
		OverID:   target.TaskID,
		ColumnID: col,
		Position: position,
	}
	prev, err := r.store.Apply(m)
	if err != nil {
		return
	}
	r.dispatch.Dispatch(ctx, m, prev, nil)
}

// resolveColumn picks the destination lane: the column targeted directly, or
// the lane owning the task under the pointer.
func (r *Reconciler) resolveColumn(target DropTarget) (domain.ColumnID, bool) {
	if target.IsColumn {
		return target.ColumnID, target.ColumnID.Valid()
	}
	over := r.store.Get(target.TaskID)
	if over == nil {
		return "", false
	}
	return over.ColumnID, true
}

// provisionalGroup builds the destination (workspace, column) sequence as it
// will look once the active task sits at its dropped slot, and returns the
// active task's index within it.
func (r *Reconciler) provisionalGroup(active *domain.Task, target DropTarget, col domain.ColumnID) ([]*domain.Task, int) {
	ws := workspaceOf(active)

	var group []*domain.Task
	for _, t := range r.store.All() {
		if t.ID == active.ID {
			continue
		}
		if workspaceOf(t) == ws && t.ColumnID == col && !t.Completed {
			group = append(group, t)
		}
	}
	sort.SliceStable(group, func(i, j int) bool { return group[i].Position < group[j].Position })

	moved := *active
	moved.ColumnID = col

	if target.IsColumn {
		// Dropped on the lane itself: the card lands at the tail.
		group = append(group, &moved)
		return group, len(group) - 1
	}

	for i, t := range group {
		if t.ID == target.TaskID {
			group = append(group[:i], append([]*domain.Task{&moved}, group[i:]...)...)
			return group, i
		}
	}

	// Target task lives outside the destination group (e.g. completed);
	// treat it like a lane drop.
	group = append(group, &moved)
	return group, len(group) - 1
}

package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/weekplan/weekplan/internal/domain"
)

// Board ties the optimistic store, the move reconciler and the persistence
// dispatcher together for one authenticated session. Every action follows the
// same shape: compute the new collection, set the store, fire an async
// persistence call, and on rejection reset to the snapshot captured before
// the mutation.
type Board struct {
	session  Session
	store    *Store
	dispatch *Dispatcher
	rec      *Reconciler
	gw       Gateway
}

// New creates a board for an authenticated session. The gateway carries the
// same session; the board never reaches for ambient auth state.
func New(session Session, gw Gateway) *Board {
	store := NewStore(session)
	dispatch := NewDispatcher(store, gw)
	return &Board{
		session:  session,
		store:    store,
		dispatch: dispatch,
		rec:      NewReconciler(store, dispatch),
		gw:       gw,
	}
}

// Store exposes the underlying collection for selectors and tests.
func (b *Board) Store() *Store { return b.store }

// Reconciler exposes the drag gesture state machine.
func (b *Board) Reconciler() *Reconciler { return b.rec }

// Refresh replaces the local collection with the server state.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.gw.FetchTasks(ctx)
	if err != nil {
		return fmt.Errorf("board.Refresh: %w", err)
	}
	b.store.Load(tasks)
	return nil
}

// Add creates a task at the top lane of the given workspace. The optimistic
// record carries a temporary timestamp-derived id and a creation-time
// position; both are replaced by the server-confirmed record on success, and
// the record is discarded on failure.
func (b *Board) Add(ctx context.Context, title string, ws domain.Workspace) *domain.Task {
	if strings.TrimSpace(title) == "" || !b.session.Valid() {
		return nil
	}

	t := &domain.Task{
		ID:        tempTaskID(),
		UserID:    b.session.UserID,
		Title:     title,
		ColumnID:  domain.ColumnToday,
		Workspace: ws,
		Subtasks:  []domain.Subtask{},
		Position:  nowMillis(),
	}

	m := Create{ID: uuid.New(), Task: t}
	prev, err := b.store.Apply(m)
	if err != nil {
		return nil
	}
	tempID := t.ID
	b.dispatch.Dispatch(ctx, m, prev, func(saved *domain.Task) {
		b.store.Confirm(tempID, saved)
	})
	return t
}

// Toggle flips a task's completed flag.
func (b *Board) Toggle(ctx context.Context, id uuid.UUID) {
	t := b.store.Get(id)
	if t == nil {
		return
	}
	m := Toggle{ID: uuid.New(), TaskID: id, Completed: !t.Completed}
	prev, err := b.store.Apply(m)
	if err != nil {
		return
	}
	b.dispatch.Dispatch(ctx, m, prev, nil)
}

// Rename replaces a task's title.
func (b *Board) Rename(ctx context.Context, id uuid.UUID, title string) {
	m := Rename{ID: uuid.New(), TaskID: id, Title: title}
	prev, err := b.store.Apply(m)
	if err != nil {
		return
	}
	b.dispatch.Dispatch(ctx, m, prev, nil)
}

// SetSubtasks replaces a task's subtask list (covers both append and remove;
// subtasks never enter the positional engine).
func (b *Board) SetSubtasks(ctx context.Context, id uuid.UUID, subtasks []domain.Subtask) {
	m := ReplaceSubtasks{ID: uuid.New(), TaskID: id, Subtasks: subtasks}
	prev, err := b.store.Apply(m)
	if err != nil {
		return
	}
	b.dispatch.Dispatch(ctx, m, prev, nil)
}

// Remove deletes a task. The local removal is permanent: a failed server
// delete is logged but never rolled back, which can leave the server holding
// a row the client no longer shows.
func (b *Board) Remove(ctx context.Context, id uuid.UUID) {
	m := Delete{ID: uuid.New(), TaskID: id}
	prev, err := b.store.Apply(m)
	if err != nil {
		return
	}
	b.dispatch.Dispatch(ctx, m, prev, nil)
}

// ClearCompleted removes every completed task in one (workspace, column)
// group. Like Remove, it is fire-and-forget with no rollback path.
func (b *Board) ClearCompleted(ctx context.Context, ws domain.Workspace, col domain.ColumnID) {
	var ids []uuid.UUID
	for _, t := range b.store.Completed(ws, col) {
		ids = append(ids, t.ID)
	}
	m := BulkClear{ID: uuid.New(), Workspace: ws, ColumnID: col, TaskIDs: ids}
	prev, err := b.store.Apply(m)
	if err != nil {
		return
	}
	b.dispatch.Dispatch(ctx, m, prev, nil)
}

// Wait drains all in-flight persists. Intended for logout teardown and tests.
func (b *Board) Wait() {
	b.dispatch.Inflight().Wait()
}

// tempTaskID derives a temporary client id from the current timestamp
// (time-ordered UUID). It is replaced by the server-assigned id on the first
// successful persist.
func tempTaskID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

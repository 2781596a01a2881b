package board

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weekplan/weekplan/internal/domain"
)

// Snapshot is an immutable view of the store's task collection. Task values
// are never mutated in place after being applied, so restoring a snapshot
// reproduces the exact pre-mutation state.
type Snapshot []*domain.Task

// Store is the client's single in-memory collection of tasks, mutated
// synchronously by every user action before any network confirmation. All
// list selectors are pure derivations over the stored slice; nothing is
// maintained as separate state that could drift from it.
type Store struct {
	mu      sync.RWMutex
	session Session
	tasks   []*domain.Task
}

// NewStore creates an empty store bound to an authenticated session.
func NewStore(session Session) *Store {
	return &Store{session: session}
}

// Session returns the session the store was created for.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Load replaces the collection with a freshly fetched server state.
func (s *Store) Load(tasks []*domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]*domain.Task(nil), tasks...)
}

// Snapshot captures the current collection for later rollback.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(Snapshot(nil), s.tasks...)
}

// Restore rolls the collection back wholesale. This is the only
// conflict-handling strategy: no partial merge, no retry.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]*domain.Task(nil), snap...)
}

// Apply mutates the collection synchronously and returns the snapshot taken
// immediately before the mutation, for rollback if the persist fails.
func (s *Store) Apply(m Mutation) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := append(Snapshot(nil), s.tasks...)

	switch m := m.(type) {
	case Create:
		s.tasks = append(s.tasks, m.Task)
	case Toggle:
		if !s.replace(m.TaskID, func(t *domain.Task) { t.Completed = m.Completed }) {
			return prev, fmt.Errorf("board.Apply: toggle: task %s: %w", m.TaskID, domain.ErrNotFound)
		}
	case Rename:
		if !s.replace(m.TaskID, func(t *domain.Task) { t.Title = m.Title }) {
			return prev, fmt.Errorf("board.Apply: rename: task %s: %w", m.TaskID, domain.ErrNotFound)
		}
	case Move:
		s.relocate(m.TaskID, m.OverID)
		if !s.replace(m.TaskID, func(t *domain.Task) {
			t.ColumnID = m.ColumnID
			t.Position = m.Position
		}) {
			return prev, fmt.Errorf("board.Apply: move: task %s: %w", m.TaskID, domain.ErrNotFound)
		}
	case ReplaceSubtasks:
		if !s.replace(m.TaskID, func(t *domain.Task) { t.Subtasks = m.Subtasks }) {
			return prev, fmt.Errorf("board.Apply: subtasks: task %s: %w", m.TaskID, domain.ErrNotFound)
		}
	case Delete:
		s.remove(func(t *domain.Task) bool { return t.ID == m.TaskID })
	case BulkClear:
		s.remove(func(t *domain.Task) bool {
			return workspaceOf(t) == m.Workspace && t.ColumnID == m.ColumnID && t.Completed
		})
	default:
		return prev, fmt.Errorf("board.Apply: unknown mutation %T", m)
	}

	return prev, nil
}

// Confirm swaps a temporarily-identified task for the server-assigned record
// after a successful create. The plaintext title travels with the caller's
// record, never the wire form.
func (s *Store) Confirm(tempID uuid.UUID, saved *domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == tempID {
			s.tasks[i] = saved
			return
		}
	}
}

// relocateColumn re-homes a task to another lane without recomputing its
// position. This backs the drag-over visual reflow; the real position is
// assigned at drag end.
func (s *Store) relocateColumn(id uuid.UUID, col domain.ColumnID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(id, func(t *domain.Task) { t.ColumnID = col })
}

// replace clones the matching task, applies fn to the clone and swaps it in.
// Clone-and-swap keeps earlier snapshots untouched.
func (s *Store) replace(id uuid.UUID, fn func(*domain.Task)) bool {
	for i, t := range s.tasks {
		if t.ID == id {
			clone := *t
			clone.UpdatedAt = time.Now()
			fn(&clone)
			s.tasks[i] = &clone
			return true
		}
	}
	return false
}

func (s *Store) remove(match func(*domain.Task) bool) {
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if !match(t) {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
}

// relocate moves the active task next to the drop target in array order, the
// same way the visual reorder happens before the position is computed. Array
// order is the tie-break when two positions collapse to the same value.
func (s *Store) relocate(activeID, overID uuid.UUID) {
	if overID == uuid.Nil || activeID == overID {
		return
	}
	from, to := -1, -1
	for i, t := range s.tasks {
		switch t.ID {
		case activeID:
			from = i
		case overID:
			to = i
		}
	}
	if from == -1 || to == -1 {
		return
	}
	moved := s.tasks[from]
	rest := append(append([]*domain.Task(nil), s.tasks[:from]...), s.tasks[from+1:]...)
	s.tasks = append(append(append([]*domain.Task(nil), rest[:to]...), moved), rest[to:]...)
}

// Get returns the task with the given id, or nil.
func (s *Store) Get(id uuid.UUID) *domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// All returns every task in array order.
func (s *Store) All() []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Task(nil), s.tasks...)
}

// Column returns the active (not completed) tasks of one (workspace, column)
// group sorted by position. The sort is stable so equal positions keep their
// array order.
func (s *Store) Column(ws domain.Workspace, col domain.ColumnID) []*domain.Task {
	return s.selectGroup(ws, col, false)
}

// Completed returns the completed tasks of one (workspace, column) group
// sorted by position.
func (s *Store) Completed(ws domain.Workspace, col domain.ColumnID) []*domain.Task {
	return s.selectGroup(ws, col, true)
}

func (s *Store) selectGroup(ws domain.Workspace, col domain.ColumnID, completed bool) []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Task
	for _, t := range s.tasks {
		if workspaceOf(t) == ws && t.ColumnID == col && t.Completed == completed {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// workspaceOf defaults untagged rows to the pro workspace, mirroring how
// legacy rows without a tag are displayed.
func workspaceOf(t *domain.Task) domain.Workspace {
	if t.Workspace == "" {
		return domain.WorkspacePro
	}
	return t.Workspace
}

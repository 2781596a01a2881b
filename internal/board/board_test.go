package board_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekplan/weekplan/internal/board"
	"github.com/weekplan/weekplan/internal/domain"
)

// ---------------------------------------------------------------------------
// 1. Refresh.
// ---------------------------------------------------------------------------

func TestBoard_Refresh(t *testing.T) {
	t.Parallel()

	fetched := []*domain.Task{
		newTask("from server", domain.ColumnToday, domain.WorkspacePro, 100),
	}
	gw := &mockGateway{
		fetchFn: func(context.Context) ([]*domain.Task, error) { return fetched, nil },
	}
	b := board.New(testSession(), gw)

	require.NoError(t, b.Refresh(context.Background()))
	assert.Len(t, b.Store().All(), 1)
}

func TestBoard_Refresh_FetchError(t *testing.T) {
	t.Parallel()

	gw := &mockGateway{
		fetchFn: func(context.Context) ([]*domain.Task, error) {
			return nil, errors.New("connection refused")
		},
	}
	b := board.New(testSession(), gw)

	err := b.Refresh(context.Background())
	require.Error(t, err)
	assert.Empty(t, b.Store().All())
}

// ---------------------------------------------------------------------------
// 2. Add: optimistic create with temp-id confirmation.
// ---------------------------------------------------------------------------

func TestBoard_Add_ConfirmSwapsServerRecord(t *testing.T) {
	t.Parallel()

	serverID := uuid.New()
	gw := &mockGateway{
		persistFn: func(_ context.Context, m board.Mutation) (*domain.Task, error) {
			create, ok := m.(board.Create)
			if !ok {
				return nil, errors.New("unexpected mutation")
			}
			saved := *create.Task
			saved.ID = serverID
			return &saved, nil
		},
	}
	b := board.New(testSession(), gw)

	temp := b.Add(context.Background(), "buy groceries", domain.WorkspacePerso)
	require.NotNil(t, temp)
	assert.NotEqual(t, uuid.Nil, temp.ID)
	assert.Equal(t, domain.ColumnToday, temp.ColumnID)
	assert.Greater(t, temp.Position, 0.0)

	b.Wait()

	// The temp record is gone, the server record took its place.
	assert.Nil(t, b.Store().Get(temp.ID))
	got := b.Store().Get(serverID)
	require.NotNil(t, got)
	assert.Equal(t, "buy groceries", got.Title)
}

func TestBoard_Add_FailedPersistRemovesTempRecord(t *testing.T) {
	t.Parallel()

	gw := &mockGateway{
		persistFn: func(context.Context, board.Mutation) (*domain.Task, error) {
			return nil, errors.New("server rejected")
		},
	}
	b := board.New(testSession(), gw)

	temp := b.Add(context.Background(), "doomed card", domain.WorkspacePro)
	require.NotNil(t, temp)
	require.NotNil(t, b.Store().Get(temp.ID))

	b.Wait()

	assert.Nil(t, b.Store().Get(temp.ID))
	assert.Empty(t, b.Store().All())
}

func TestBoard_Add_Rejected(t *testing.T) {
	t.Parallel()

	gw := &mockGateway{}

	tests := []struct {
		name    string
		session board.Session
		title   string
	}{
		{"blank title", testSession(), "   "},
		{"empty title", testSession(), ""},
		{"no session", board.Session{}, "valid title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := board.New(tt.session, gw)
			assert.Nil(t, b.Add(context.Background(), tt.title, domain.WorkspacePro))
			b.Wait()
			assert.Equal(t, int64(0), gw.persistCalls.Load())
		})
	}
}

// ---------------------------------------------------------------------------
// 3. Toggle / Rename / SetSubtasks: compensated on failure.
// ---------------------------------------------------------------------------

func TestBoard_Toggle_FailedPersistRollsBack(t *testing.T) {
	t.Parallel()

	task := newTask("card", domain.ColumnToday, domain.WorkspacePro, 100)
	gw := &mockGateway{
		persistFn: func(context.Context, board.Mutation) (*domain.Task, error) {
			return nil, errors.New("server rejected")
		},
	}
	b := dragBoard(gw, task)

	b.Toggle(context.Background(), task.ID)
	b.Wait()

	assert.False(t, b.Store().Get(task.ID).Completed)
}

func TestBoard_Rename(t *testing.T) {
	t.Parallel()

	task := newTask("draft", domain.ColumnToday, domain.WorkspacePro, 100)
	gw := &mockGateway{}
	b := dragBoard(gw, task)

	b.Rename(context.Background(), task.ID, "final")
	b.Wait()

	assert.Equal(t, "final", b.Store().Get(task.ID).Title)
	assert.Equal(t, int64(1), gw.persistCalls.Load())
}

func TestBoard_SetSubtasks(t *testing.T) {
	t.Parallel()

	task := newTask("card", domain.ColumnToday, domain.WorkspacePro, 100)
	gw := &mockGateway{}
	b := dragBoard(gw, task)

	subtasks := []domain.Subtask{{ID: "s1", Title: "step one"}}
	b.SetSubtasks(context.Background(), task.ID, subtasks)
	b.Wait()

	assert.Equal(t, subtasks, b.Store().Get(task.ID).Subtasks)
}

// ---------------------------------------------------------------------------
// 4. Remove / ClearCompleted: deliberately not compensated.
// ---------------------------------------------------------------------------

// TestBoard_Remove_FailedPersistStaysRemoved pins the accepted divergence: a
// delete the server rejects is NOT rolled back locally.
func TestBoard_Remove_FailedPersistStaysRemoved(t *testing.T) {
	t.Parallel()

	task := newTask("card", domain.ColumnToday, domain.WorkspacePro, 100)
	gw := &mockGateway{
		persistFn: func(context.Context, board.Mutation) (*domain.Task, error) {
			return nil, errors.New("server rejected")
		},
	}
	b := dragBoard(gw, task)

	b.Remove(context.Background(), task.ID)
	b.Wait()

	assert.Nil(t, b.Store().Get(task.ID))
}

func TestBoard_ClearCompleted(t *testing.T) {
	t.Parallel()

	done := newTask("done", domain.ColumnToday, domain.WorkspacePro, 100)
	done.Completed = true
	open := newTask("open", domain.ColumnToday, domain.WorkspacePro, 200)
	gw := &mockGateway{}
	b := dragBoard(gw, done, open)

	b.ClearCompleted(context.Background(), domain.WorkspacePro, domain.ColumnToday)
	b.Wait()

	assert.Nil(t, b.Store().Get(done.ID))
	assert.NotNil(t, b.Store().Get(open.ID))
}

func TestBoard_ClearCompleted_FailedPersistStaysRemoved(t *testing.T) {
	t.Parallel()

	done := newTask("done", domain.ColumnToday, domain.WorkspacePro, 100)
	done.Completed = true
	gw := &mockGateway{
		persistFn: func(context.Context, board.Mutation) (*domain.Task, error) {
			return nil, errors.New("server rejected")
		},
	}
	b := dragBoard(gw, done)

	b.ClearCompleted(context.Background(), domain.WorkspacePro, domain.ColumnToday)
	b.Wait()

	assert.Nil(t, b.Store().Get(done.ID))
}

// ---------------------------------------------------------------------------
// 5. In-flight registry.
// ---------------------------------------------------------------------------

func TestBoard_Wait_DrainsAllPersists(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	gw := &mockGateway{
		persistFn: func(context.Context, board.Mutation) (*domain.Task, error) {
			<-release
			return nil, nil
		},
	}
	task := newTask("card", domain.ColumnToday, domain.WorkspacePro, 100)
	b := dragBoard(gw, task)

	b.Rename(context.Background(), task.ID, "one")
	b.Toggle(context.Background(), task.ID)
	close(release)
	b.Wait()

	assert.Equal(t, int64(2), gw.persistCalls.Load())
}

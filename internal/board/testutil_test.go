package board_test

import (
	"context"
	"sync/atomic"

	"github.com/weekplan/weekplan/internal/board"
	"github.com/weekplan/weekplan/internal/domain"
)

// mockGateway is a function-field test double for board.Gateway. Calls are
// counted so tests can assert zero network activity.
type mockGateway struct {
	fetchFn   func(ctx context.Context) ([]*domain.Task, error)
	persistFn func(ctx context.Context, m board.Mutation) (*domain.Task, error)

	fetchCalls   atomic.Int64
	persistCalls atomic.Int64
}

func (g *mockGateway) FetchTasks(ctx context.Context) ([]*domain.Task, error) {
	g.fetchCalls.Add(1)
	if g.fetchFn != nil {
		return g.fetchFn(ctx)
	}
	return nil, nil
}

func (g *mockGateway) Persist(ctx context.Context, m board.Mutation) (*domain.Task, error) {
	g.persistCalls.Add(1)
	if g.persistFn != nil {
		return g.persistFn(ctx, m)
	}
	return nil, nil
}

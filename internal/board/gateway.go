package board

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/weekplan/weekplan/internal/domain"
)

// Gateway serializes a single mutation as a request to the server, scoped to
// the authenticated session. For Create, the returned task is the
// server-assigned record; for every other kind it is nil.
type Gateway interface {
	FetchTasks(ctx context.Context) ([]*domain.Task, error)
	Persist(ctx context.Context, m Mutation) (*domain.Task, error)
}

// Inflight tracks pending persistence calls keyed by mutation id. Requests
// are never cancelled or superseded today; the registry exists so a future
// last-writer-wins suppression can hook in without changing the contract.
type Inflight struct {
	mu      sync.Mutex
	pending map[uuid.UUID]struct{}
	wg      sync.WaitGroup
}

func NewInflight() *Inflight {
	return &Inflight{pending: make(map[uuid.UUID]struct{})}
}

func (f *Inflight) add(id uuid.UUID) {
	f.mu.Lock()
	f.pending[id] = struct{}{}
	f.mu.Unlock()
	f.wg.Add(1)
}

func (f *Inflight) done(id uuid.UUID) {
	f.mu.Lock()
	delete(f.pending, id)
	f.mu.Unlock()
	f.wg.Done()
}

// Len reports how many persists are outstanding.
func (f *Inflight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Wait blocks until every registered persist has resolved.
func (f *Inflight) Wait() {
	f.wg.Wait()
}

// Dispatcher fires persistence calls without blocking the caller and applies
// the compensation policy: compensable mutations restore the pre-mutation
// snapshot on failure, the rest log and move on. Failures are otherwise
// silent; there is no retry and no user-facing affordance.
type Dispatcher struct {
	store    *Store
	gw       Gateway
	inflight *Inflight
}

func NewDispatcher(store *Store, gw Gateway) *Dispatcher {
	return &Dispatcher{store: store, gw: gw, inflight: NewInflight()}
}

// Inflight exposes the registry, mainly so callers can drain before logout.
func (d *Dispatcher) Inflight() *Inflight {
	return d.inflight
}

// Dispatch persists m asynchronously. prev is the snapshot captured right
// before the optimistic apply; it is restored only when the mutation is
// compensable. onSaved, when non-nil, receives the server record returned for
// a successful Create.
func (d *Dispatcher) Dispatch(ctx context.Context, m Mutation, prev Snapshot, onSaved func(*domain.Task)) {
	d.inflight.add(m.MutationID())
	go func() {
		defer d.inflight.done(m.MutationID())

		saved, err := d.gw.Persist(ctx, m)
		if err != nil {
			log.Error().Err(err).
				Str("mutation", m.MutationID().String()).
				Bool("compensated", m.Compensable()).
				Msg("persist failed")
			if m.Compensable() {
				d.store.Restore(prev)
			}
			return
		}
		if saved != nil && onSaved != nil {
			onSaved(saved)
		}
	}()
}

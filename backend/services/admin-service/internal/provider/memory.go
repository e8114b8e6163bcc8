package provider

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/catalog"
	"evadmin/backend/services/admin-service/internal/mockdata"
	"evadmin/backend/services/admin-service/internal/store"
)

// Memory serves one entity from an in-memory collection.
type Memory[R any] struct {
	def    *catalog.Definition[R]
	items  *store.Collection[R]
	mutate mockdata.Mutator[R]
	now    func() time.Time
	rngMu  sync.Mutex
	rng    *rand.Rand
}

// NewMemory returns a provider over records. mutate may be nil when the
// entity is never churned.
func NewMemory[R any](def *catalog.Definition[R], records []R, mutate mockdata.Mutator[R], seed uint64) *Memory[R] {
	return &Memory[R]{
		def:    def,
		items:  store.NewCollection(def.ID, records),
		mutate: mutate,
		now:    time.Now,
		rng:    mockdata.NewRand(seed),
	}
}

// FetchPage implements listview.Fetcher.
func (m *Memory[R]) FetchPage(ctx context.Context, q listview.Query) (listview.Page[R], error) {
	if err := ctx.Err(); err != nil {
		return listview.Page[R]{}, err
	}
	return listview.Apply(m.items.Snapshot(), m.def.Schema, q), nil
}

// FetchAll filters and sorts one snapshot of the collection.
func (m *Memory[R]) FetchAll(ctx context.Context, q listview.Query, limit int) ([]R, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view := listview.Select(m.items.Snapshot(), m.def.Schema, q.Filter, q.Sort)
	if limit > 0 && len(view) > limit {
		view = view[:limit]
	}
	return view, nil
}

// Get returns the record with id.
func (m *Memory[R]) Get(ctx context.Context, id string) (R, error) {
	r, ok := m.items.Get(id)
	if !ok {
		return r, fmt.Errorf("%s %s: %w", m.def.Name, id, ErrNotFound)
	}
	return r, nil
}

// SetStatus overwrites the status of id.
func (m *Memory[R]) SetStatus(ctx context.Context, id, status string) (R, error) {
	r, ok := m.items.Update(id, func(r *R) { m.def.SetStatus(r, status) })
	if !ok {
		return r, fmt.Errorf("%s %s: %w", m.def.Name, id, ErrNotFound)
	}
	return r, nil
}

// Transition checks and writes the status under the collection lock, so
// concurrent moves out of the same status cannot both succeed.
func (m *Memory[R]) Transition(ctx context.Context, id, status string) (R, error) {
	r, ok, err := m.items.UpdateIf(id, func(r *R) error {
		if err := m.def.CheckTransition(m.def.Status(*r), status); err != nil {
			return err
		}
		m.def.SetStatus(r, status)
		return nil
	})
	if !ok {
		return r, fmt.Errorf("%s %s: %w", m.def.Name, id, ErrNotFound)
	}
	if err != nil {
		var zero R
		return zero, err
	}
	return r, nil
}

// CountByStatus tallies records per status.
func (m *Memory[R]) CountByStatus(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(m.def.Statuses))
	for _, s := range m.def.Statuses {
		out[s] = 0
	}
	for _, r := range m.items.Snapshot() {
		out[m.def.Status(r)]++
	}
	return out, nil
}

// Records returns a snapshot of every record in insertion order.
func (m *Memory[R]) Records() []R {
	return m.items.Snapshot()
}

// MutateRandom applies the mutator to up to n distinct random records and
// returns their ids.
func (m *Memory[R]) MutateRandom(ctx context.Context, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.mutate == nil {
		return nil, nil
	}
	total := m.items.Len()
	n = min(n, total)
	if n <= 0 {
		return nil, nil
	}

	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	positions := m.rng.Perm(total)[:n]
	now := m.now()
	return m.items.UpdateAt(positions, func(r *R) { m.mutate(r, m.rng, now) }), nil
}

// Package store keeps the in-memory backing collections used in memory mode.
package store

import (
	"slices"
	"sync"
)

// Collection is an insertion-ordered, id-indexed set of records shared by
// HTTP handlers, live sessions and the simulator.
type Collection[R any] struct {
	mu    sync.RWMutex
	items []R
	index map[string]int
	idOf  func(R) string
}

// NewCollection returns a collection seeded with records. Later duplicates
// of an id replace earlier ones in place.
func NewCollection[R any](idOf func(R) string, records []R) *Collection[R] {
	c := &Collection[R]{
		items: make([]R, 0, len(records)),
		index: make(map[string]int, len(records)),
		idOf:  idOf,
	}
	for _, r := range records {
		c.put(r)
	}
	return c
}

// Snapshot returns a copy of all records in insertion order.
func (c *Collection[R]) Snapshot() []R {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Len returns the number of records.
func (c *Collection[R]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns a copy of the record with id.
func (c *Collection[R]) Get(id string) (R, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		var zero R
		return zero, false
	}
	return c.items[i], true
}

// Put inserts r or replaces the record with the same id.
func (c *Collection[R]) Put(r R) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(r)
}

func (c *Collection[R]) put(r R) {
	id := c.idOf(r)
	if i, ok := c.index[id]; ok {
		c.items[i] = r
		return
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, r)
}

// Update applies fn to the record with id under the write lock and returns
// the updated copy.
func (c *Collection[R]) Update(id string, fn func(*R)) (R, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		var zero R
		return zero, false
	}
	fn(&c.items[i])
	return c.items[i], true
}

// UpdateIf applies fn to a copy of the record with id under the write lock
// and stores the copy only when fn returns nil. The bool reports whether id
// exists.
func (c *Collection[R]) UpdateIf(id string, fn func(*R) error) (R, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		var zero R
		return zero, false, nil
	}
	r := c.items[i]
	if err := fn(&r); err != nil {
		return c.items[i], true, err
	}
	c.items[i] = r
	return r, true, nil
}

// UpdateAt applies fn to the records at the given positions and returns
// their ids. Out-of-range positions are skipped.
func (c *Collection[R]) UpdateAt(positions []int, fn func(*R)) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(positions))
	for _, i := range positions {
		if i < 0 || i >= len(c.items) {
			continue
		}
		fn(&c.items[i])
		ids = append(ids, c.idOf(c.items[i]))
	}
	return ids
}

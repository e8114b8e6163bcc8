// Package feed carries record-update notifications from update sources
// (the simulator, Redis pub/sub, MQTT telemetry) to the views that must
// re-render.
package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Update says that records of one entity changed.
type Update struct {
	Entity string    `json:"entity"`
	IDs    []string  `json:"ids,omitempty"`
	Source string    `json:"source"`
	Origin string    `json:"origin,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher announces updates.
type Publisher interface {
	Publish(ctx context.Context, u Update)
}

// Hook runs synchronously inside Publish, before any subscriber sees the
// update.
type Hook func(ctx context.Context, u Update)

// Bus is the in-process fan-out. Delivery never blocks the publisher:
// a subscriber whose buffer is full misses the update.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	hooks  map[string][]Hook
	nextID uint64
	logger *zap.Logger
}

// NewBus returns an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[uint64]*Subscription),
		hooks:  make(map[string][]Hook),
		logger: logger,
	}
}

// Subscription receives updates for one entity, or all entities when the
// entity is empty.
type Subscription struct {
	C      <-chan Update
	ch     chan Update
	id     uint64
	entity string
	bus    *Bus
	once   sync.Once
}

// Close unsubscribes and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

// Hook registers fn for entity ("" for every entity).
func (b *Bus) Hook(entity string, fn Hook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks[entity] = append(b.hooks[entity], fn)
}

// Subscribe returns a buffered subscription.
func (b *Bus) Subscribe(entity string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Update, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{C: ch, ch: ch, id: b.nextID, entity: entity, bus: b}
	b.subs[sub.id] = sub
	return sub
}

// OnRecordUpdated calls fn for every update of entity until ctx is done or
// the returned stop function is called.
func (b *Bus) OnRecordUpdated(ctx context.Context, entity string, fn func(Update)) (stop func()) {
	sub := b.Subscribe(entity, 64)
	go func() {
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case u, ok := <-sub.C:
				if !ok {
					return
				}
				fn(u)
			}
		}
	}()
	return sub.Close
}

// Publish runs hooks and then fans u out to matching subscribers.
func (b *Bus) Publish(ctx context.Context, u Update) {
	if u.At.IsZero() {
		u.At = time.Now().UTC()
	}

	b.mu.RLock()
	hooks := append(append([]Hook(nil), b.hooks[u.Entity]...), b.hooks[""]...)
	b.mu.RUnlock()
	for _, h := range hooks {
		h(ctx, u)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.entity != "" && sub.entity != u.Entity {
			continue
		}
		select {
		case sub.ch <- u:
		default:
			b.logger.Warn("dropping update, subscriber buffer full",
				zap.String("entity", u.Entity),
				zap.Uint64("subscription", sub.id),
			)
		}
	}
}

// Package live serves list views over WebSocket. Every connection owns one
// list-view controller driven by a single event-loop goroutine.
package live

import (
	"context"
	"sync"
	"time"
)

// Hub tracks open sessions and keeps them alive with pings.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	pingInterval time.Duration
}

// NewHub builds a hub. A non-positive interval defaults to 30s.
func NewHub(pingInterval time.Duration) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		sessions:     make(map[string]*Session),
		pingInterval: pingInterval,
	}
}

// Add registers a session.
func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID()] = s
}

// Remove forgets a session.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

// Count returns the number of open sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Start pings every session until ctx is done and then closes them all.
func (h *Hub) Start(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.mu.RLock()
			for _, s := range h.sessions {
				s.Close()
			}
			h.mu.RUnlock()
			return
		case <-ticker.C:
			h.mu.RLock()
			for _, s := range h.sessions {
				_ = s.Ping()
			}
			h.mu.RUnlock()
		}
	}
}

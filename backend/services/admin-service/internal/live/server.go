package live

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"evadmin/backend/services/admin-service/internal/catalog"
	"evadmin/backend/services/admin-service/internal/feed"
)

// Options tune every session.
type Options struct {
	PageSize      int
	FlushInterval time.Duration
	WriteTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.FlushInterval <= 0 {
		o.FlushInterval = 250 * time.Millisecond
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	return o
}

// Server upgrades /api/live/{entity} requests.
type Server struct {
	hub      *Hub
	registry *catalog.Registry
	bus      *feed.Bus
	opts     Options
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewServer builds the live endpoint.
func NewServer(hub *Hub, registry *catalog.Registry, bus *feed.Bus, opts Options, logger *zap.Logger) *Server {
	return &Server{
		hub:      hub,
		registry: registry,
		bus:      bus,
		opts:     opts.withDefaults(),
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is the HTTP handler for GET /api/live/{entity}.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	res, ok := s.registry.Lookup(entity)
	if !ok {
		http.Error(w, "unknown entity", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	session := newSession(id, res, conn, s.bus.Subscribe(entity, 32), s.opts, s.logger, func(id string) {
		s.hub.Remove(id)
		cancel()
	})
	s.hub.Add(session)

	go session.Start(ctx)
	s.logger.Info("live session opened", zap.String("session_id", id), zap.String("entity", entity))
}

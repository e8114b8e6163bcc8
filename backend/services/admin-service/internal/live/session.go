package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/catalog"
	"evadmin/backend/services/admin-service/internal/feed"
)

// Client operations.
const (
	OpFilter   = "filter"
	OpSort     = "sort"
	OpPage     = "page"
	OpPageSize = "pageSize"
	OpRefresh  = "refresh"
)

// Command is one client request. Sort without a direction toggles.
type Command struct {
	Op        string            `json:"op"`
	Filter    map[string]string `json:"filter,omitempty"`
	Field     string            `json:"field,omitempty"`
	Direction string            `json:"direction,omitempty"`
	Page      int               `json:"page,omitempty"`
	Size      int               `json:"size,omitempty"`
}

// Message is pushed to the client: a page or an error.
type Message struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Error   string `json:"error,omitempty"`
	*listview.Page[any]
}

const (
	readLimit   = 64 * 1024
	readTimeout = 60 * time.Second
)

// Session is one WebSocket list view.
type Session struct {
	id            string
	entity        string
	ws            *websocket.Conn
	view          catalog.Session
	updates       *feed.Subscription
	commands      chan []byte
	send          chan []byte
	flushInterval time.Duration
	writeTimeout  time.Duration
	logger        *zap.Logger
	onClose       func(id string)
}

func newSession(id string, res catalog.Resource, ws *websocket.Conn, updates *feed.Subscription, opts Options, logger *zap.Logger, onClose func(string)) *Session {
	return &Session{
		id:            id,
		entity:        res.Name(),
		ws:            ws,
		view:          res.NewSession(opts.PageSize),
		updates:       updates,
		commands:      make(chan []byte, 16),
		send:          make(chan []byte, 16),
		flushInterval: opts.FlushInterval,
		writeTimeout:  opts.WriteTimeout,
		logger:        logger.With(zap.String("session_id", id), zap.String("entity", res.Name())),
		onClose:       onClose,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Start runs the session until the client disconnects or ctx is done.
func (s *Session) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	go s.writePump(ctx)
	go s.loop(ctx)
	s.readPump(ctx, cancel)
}

func (s *Session) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer s.cleanup(cancel)
	s.ws.SetReadLimit(readLimit)
	s.ws.SetReadDeadline(time.Now().Add(readTimeout))
	s.ws.SetPongHandler(func(string) error {
		s.ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, message, err := s.ws.ReadMessage()
		if err != nil {
			s.logger.Info("live session read closed", zap.Error(err))
			return
		}
		select {
		case s.commands <- message:
		case <-ctx.Done():
			return
		}
	}
}

// loop owns the controller: commands, updates and flushes are handled here
// one at a time in arrival order.
func (s *Session) loop(ctx context.Context) {
	flush := time.NewTicker(s.flushInterval)
	defer flush.Stop()

	s.push(s.view.Refresh(ctx))

	updates := s.updates.C
	dirty := false
	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-s.commands:
			s.handle(ctx, raw)
		case _, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			dirty = true
		case <-flush.C:
			if dirty {
				dirty = false
				s.push(s.view.Refresh(ctx))
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, raw []byte) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		s.pushError(errors.New("invalid command"))
		return
	}

	var (
		page listview.Page[any]
		err  error
	)
	switch cmd.Op {
	case OpFilter:
		page, err = s.view.SetFilter(ctx, listview.Filter(cmd.Filter))
	case OpSort:
		if cmd.Direction == "" {
			page, err = s.view.ToggleSort(ctx, cmd.Field)
		} else {
			page, err = s.view.SetSort(ctx, cmd.Field, listview.ParseDirection(cmd.Direction))
		}
	case OpPage:
		page, err = s.view.SetPage(ctx, cmd.Page)
	case OpPageSize:
		page, err = s.view.SetPageSize(ctx, cmd.Size)
	case OpRefresh:
		page, err = s.view.Refresh(ctx)
	default:
		s.pushError(fmt.Errorf("unknown op %q", cmd.Op))
		return
	}
	s.push(page, err)
}

func (s *Session) push(page listview.Page[any], err error) {
	if err != nil {
		s.logger.Warn("live session fetch failed", zap.Error(err))
		s.pushError(errors.New("failed to load page"))
		return
	}
	s.enqueue(Message{Type: "page", Session: s.id, Page: &page})
}

func (s *Session) pushError(err error) {
	s.enqueue(Message{Type: "error", Session: s.id, Error: err.Error()})
}

func (s *Session) enqueue(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("encode live message", zap.Error(err))
		return
	}
	select {
	case s.send <- data:
	default:
		s.logger.Warn("dropping outgoing message, buffer full")
	}
}

func (s *Session) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.send:
			if err := s.write(websocket.TextMessage, msg); err != nil {
				s.logger.Info("live session write failed", zap.Error(err))
				_ = s.ws.Close()
				return
			}
		}
	}
}

// Ping sends a control ping; it is safe to call from other goroutines.
func (s *Session) Ping() error {
	return s.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(s.writeTimeout))
}

// Close drops the connection; the read pump then tears the session down.
func (s *Session) Close() {
	_ = s.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(time.Second))
	_ = s.ws.Close()
}

func (s *Session) write(messageType int, data []byte) error {
	s.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.ws.WriteMessage(messageType, data)
}

func (s *Session) cleanup(cancel context.CancelFunc) {
	cancel()
	s.updates.Close()
	_ = s.ws.Close()
	if s.onClose != nil {
		s.onClose(s.id)
	}
}

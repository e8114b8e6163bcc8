package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/catalog"
	"evadmin/backend/services/admin-service/internal/feed"
	"evadmin/backend/services/admin-service/internal/mockdata"
	"evadmin/backend/services/admin-service/internal/models"
	"evadmin/backend/services/admin-service/internal/provider"
)

type pageMessage struct {
	Type    string           `json:"type"`
	Session string           `json:"session"`
	Error   string           `json:"error"`
	Items   []models.Station `json:"items"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	Pages   int              `json:"pages"`
	Sort    listview.Sort    `json:"sort"`
}

type fixture struct {
	url string
	bus *feed.Bus
	mem *provider.Memory[models.Station]
	hub *Hub
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	records := mockdata.Stations(mockdata.NewRand(9), 45, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))
	mem := provider.NewMemory(catalog.Stations(), records, nil, 1)
	bus := feed.NewBus(zap.NewNop())
	registry := catalog.NewRegistry(catalog.NewResource(catalog.Stations(), mem, bus))
	hub := NewHub(time.Hour)
	srv := NewServer(hub, registry, bus, Options{PageSize: 20, FlushInterval: 20 * time.Millisecond}, zap.NewNop())

	r := chi.NewRouter()
	r.Get("/api/live/{entity}", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return fixture{url: "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live/", bus: bus, mem: mem, hub: hub}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) pageMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg pageMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, cmd Command) pageMessage {
	t.Helper()
	require.NoError(t, conn.WriteJSON(cmd))
	return read(t, conn)
}

func TestSessionPushesInitialPage(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.url+"stations")

	msg := read(t, conn)
	assert.Equal(t, "page", msg.Type)
	assert.NotEmpty(t, msg.Session)
	assert.Equal(t, 45, msg.Total)
	assert.Equal(t, 3, msg.Pages)
	assert.Len(t, msg.Items, 20)
	assert.Equal(t, "ST-0001", msg.Items[0].ID)

	require.Eventually(t, func() bool { return f.hub.Count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSessionCommands(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.url+"stations")
	read(t, conn)

	msg := send(t, conn, Command{Op: OpPage, Page: 3})
	assert.Equal(t, 3, msg.Page)
	assert.Len(t, msg.Items, 5)

	msg = send(t, conn, Command{Op: OpPage, Page: 99})
	assert.Equal(t, 3, msg.Page)

	msg = send(t, conn, Command{Op: OpSort, Field: "device_count"})
	assert.Equal(t, listview.Sort{Field: "device_count", Direction: listview.Asc}, msg.Sort)
	for i := 1; i < len(msg.Items); i++ {
		assert.LessOrEqual(t, msg.Items[i-1].DeviceCount, msg.Items[i].DeviceCount)
	}

	msg = send(t, conn, Command{Op: OpSort, Field: "device_count", Direction: "desc"})
	assert.Equal(t, listview.Desc, msg.Sort.Direction)
	for i := 1; i < len(msg.Items); i++ {
		assert.GreaterOrEqual(t, msg.Items[i-1].DeviceCount, msg.Items[i].DeviceCount)
	}

	msg = send(t, conn, Command{Op: OpFilter, Filter: map[string]string{"status": "online"}})
	assert.Equal(t, 1, msg.Page)
	for _, s := range msg.Items {
		assert.Equal(t, "online", s.Status)
	}

	msg = send(t, conn, Command{Op: OpPageSize, Size: 5})
	assert.LessOrEqual(t, len(msg.Items), 5)

	msg = send(t, conn, Command{Op: "explode"})
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "explode")
}

func TestSessionRerendersAfterUpdates(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.url+"stations")
	first := read(t, conn)
	target := first.Items[0]

	status := "offline"
	if target.Status == status {
		status = "online"
	}
	_, err := f.mem.SetStatus(context.Background(), target.ID, status)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		f.bus.Publish(context.Background(), feed.Update{Entity: models.EntityStations, IDs: []string{target.ID}})
	}
	f.bus.Publish(context.Background(), feed.Update{Entity: models.EntityDevices, IDs: []string{"DV-00001"}})

	msg := read(t, conn)
	assert.Equal(t, "page", msg.Type)
	assert.Equal(t, target.ID, msg.Items[0].ID)
	assert.Equal(t, status, msg.Items[0].Status)

	// coalesced: no second push for the burst
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestUnknownEntityIsRejected(t *testing.T) {
	f := newFixture(t)
	_, resp, err := websocket.DefaultDialer.Dial(f.url+"nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClosingRemovesSession(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.url+"stations")
	read(t, conn)
	require.Eventually(t, func() bool { return f.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return f.hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubClosesSessionsOnShutdown(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.url+"stations")
	read(t, conn)
	require.Eventually(t, func() bool { return f.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.hub.Start(ctx)
		close(done)
	}()
	cancel()
	<-done

	require.Eventually(t, func() bool { return f.hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}

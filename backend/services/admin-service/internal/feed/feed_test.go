package feed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBusDeliversByEntity(t *testing.T) {
	bus := NewBus(zap.NewNop())
	stations := bus.Subscribe("stations", 4)
	all := bus.Subscribe("", 4)
	defer stations.Close()
	defer all.Close()

	bus.Publish(context.Background(), Update{Entity: "devices", IDs: []string{"DV-00001"}})
	bus.Publish(context.Background(), Update{Entity: "stations", IDs: []string{"ST-0001"}})

	got := <-stations.C
	assert.Equal(t, []string{"ST-0001"}, got.IDs)
	assert.False(t, got.At.IsZero())
	assert.Len(t, stations.C, 0)

	assert.Equal(t, "devices", (<-all.C).Entity)
	assert.Equal(t, "stations", (<-all.C).Entity)
}

func TestBusRunsHooksBeforeDelivery(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var order []string
	var mu sync.Mutex
	bus.Hook("orders", func(ctx context.Context, u Update) {
		mu.Lock()
		order = append(order, "hook")
		mu.Unlock()
	})
	bus.Hook("users", func(ctx context.Context, u Update) { t.Fatal("wrong entity hook") })

	sub := bus.Subscribe("orders", 1)
	defer sub.Close()
	bus.Publish(context.Background(), Update{Entity: "orders"})
	<-sub.C

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"hook"}, order)
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus(zap.NewNop())
	sub := bus.Subscribe("stations", 1)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		bus.Publish(context.Background(), Update{Entity: "stations"})
	}
	assert.Len(t, sub.C, 1)
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	bus := NewBus(zap.NewNop())
	sub := bus.Subscribe("stations", 1)
	sub.Close()
	sub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)
	bus.Publish(context.Background(), Update{Entity: "stations"})
}

func TestOnRecordUpdated(t *testing.T) {
	bus := NewBus(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Update, 1)
	stop := bus.OnRecordUpdated(ctx, "devices", func(u Update) { got <- u })
	defer stop()

	bus.Publish(ctx, Update{Entity: "devices", IDs: []string{"DV-00007"}})
	select {
	case u := <-got:
		assert.Equal(t, []string{"DV-00007"}, u.IDs)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
}

type recordingPublisher struct {
	mu      sync.Mutex
	updates []Update
}

func (p *recordingPublisher) Publish(_ context.Context, u Update) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
}

func (p *recordingPublisher) all() []Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Update(nil), p.updates...)
}

func TestSimulatorTickPublishesMutatedIDs(t *testing.T) {
	pub := &recordingPublisher{}
	var asked int
	target := Target{Entity: "stations", Mutate: func(ctx context.Context, n int) ([]string, error) {
		asked = n
		return []string{"ST-0003", "ST-0009"}, nil
	}}
	sim := NewSimulator([]Target{target}, time.Second, 3, pub, zap.NewNop())

	sim.Tick(context.Background(), target)
	assert.Equal(t, 3, asked)
	require.Len(t, pub.all(), 1)
	assert.Equal(t, Update{Entity: "stations", IDs: []string{"ST-0003", "ST-0009"}, Source: SourceSimulator}, pub.all()[0])
}

func TestSimulatorSkipsEmptyAndFailedBatches(t *testing.T) {
	pub := &recordingPublisher{}
	sim := NewSimulator(nil, 0, 0, pub, zap.NewNop())

	sim.Tick(context.Background(), Target{Entity: "a", Mutate: func(context.Context, int) ([]string, error) { return nil, nil }})
	sim.Tick(context.Background(), Target{Entity: "b", Mutate: func(context.Context, int) ([]string, error) {
		return nil, errors.New("db down")
	}})
	assert.Empty(t, pub.all())
}

func TestSimulatorRunStopsWithContext(t *testing.T) {
	pub := &recordingPublisher{}
	target := Target{Entity: "orders", Mutate: func(context.Context, int) ([]string, error) { return []string{"OD-1"}, nil }}
	sim := NewSimulator([]Target{target}, 10*time.Millisecond, 1, pub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(pub.all()) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("simulator did not stop")
	}
}

func TestRedisBridgeForwardsBothWays(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bus := NewBus(zap.NewNop())
	bridge := NewRedisBridge(client, bus, "test:updates", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- bridge.Run(ctx) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:updates")["test:updates"] == 1
	}, time.Second, 5*time.Millisecond)

	// remote -> local
	local := bus.Subscribe("devices", 4)
	defer local.Close()
	remote, err := json.Marshal(Update{Entity: "devices", IDs: []string{"DV-00002"}, Origin: "other-instance"})
	require.NoError(t, err)
	require.NoError(t, client.Publish(ctx, "test:updates", remote).Err())

	select {
	case u := <-local.C:
		assert.Equal(t, "other-instance", u.Origin)
		assert.Equal(t, []string{"DV-00002"}, u.IDs)
	case <-time.After(time.Second):
		t.Fatal("remote update not delivered")
	}

	// local -> remote
	watcher := client.Subscribe(ctx, "test:updates")
	defer watcher.Close()
	_, err = watcher.Receive(ctx)
	require.NoError(t, err)

	bus.Publish(ctx, Update{Entity: "stations", IDs: []string{"ST-0001"}, Source: SourceSimulator})

	select {
	case msg := <-watcher.Channel():
		var u Update
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &u))
		assert.Equal(t, "stations", u.Entity)
		assert.Equal(t, bridge.Origin(), u.Origin)
	case <-time.After(time.Second):
		t.Fatal("local update not forwarded")
	}

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop")
	}
}

func TestRedisBridgeIgnoresOwnAndMalformedMessages(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bridge := NewRedisBridge(nil, bus, "", zap.NewNop())
	sub := bus.Subscribe("", 4)
	defer sub.Close()

	own, _ := json.Marshal(Update{Entity: "orders", Origin: bridge.Origin()})
	bridge.receive(context.Background(), string(own))
	bridge.receive(context.Background(), "{not json")

	external, _ := json.Marshal(Update{Entity: "orders"})
	bridge.receive(context.Background(), string(external))

	require.Len(t, sub.C, 1)
	assert.Equal(t, "external", (<-sub.C).Origin)
}

func TestMQTTBridgeHandleMessage(t *testing.T) {
	pub := &recordingPublisher{}
	type call struct{ entity, id, status string }
	var calls []call
	apply := func(ctx context.Context, entity, id, status string) error {
		if id == "DV-404" {
			return errors.New("not found")
		}
		calls = append(calls, call{entity, id, status})
		return nil
	}
	b := NewMQTTBridge(MQTTOptions{TopicPrefix: "ev/"}, apply, pub, zap.NewNop())
	assert.Equal(t, "ev/+/+/status", b.Topic())

	require.NoError(t, b.handleMessage("ev/devices/DV-00001/status", []byte(`{"status":" fault "}`)))
	assert.Equal(t, []call{{"devices", "DV-00001", "fault"}}, calls)
	require.Len(t, pub.all(), 1)
	assert.Equal(t, SourceMQTT, pub.all()[0].Source)
	assert.Equal(t, []string{"DV-00001"}, pub.all()[0].IDs)

	assert.Error(t, b.handleMessage("other/devices/DV-1/status", []byte(`{"status":"online"}`)))
	assert.Error(t, b.handleMessage("ev/devices/DV-1/heartbeat", []byte(`{"status":"online"}`)))
	assert.Error(t, b.handleMessage("ev/devices/DV-1/status", []byte(`nope`)))
	assert.Error(t, b.handleMessage("ev/devices/DV-1/status", []byte(`{"status":""}`)))
	assert.Error(t, b.handleMessage("ev/devices/DV-404/status", []byte(`{"status":"online"}`)))
	assert.Len(t, pub.all(), 1)
}

var fastBackoff = Backoff{Min: time.Millisecond, Max: 4 * time.Millisecond}

func TestRetryRestartsFailedSessions(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastBackoff, zap.NewNop(), "test", func(context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("refused")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestRetryStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := retry(ctx, fastBackoff, zap.NewNop(), "test", func(context.Context) error {
		return errors.New("refused")
	})
	assert.NoError(t, err)
}

func TestBackoffDefaults(t *testing.T) {
	assert.Equal(t, DefaultBackoff, Backoff{}.normalize())
	assert.Equal(t, Backoff{Min: time.Minute, Max: time.Minute}, Backoff{Min: time.Minute}.normalize())
}

func TestRedisBridgeWaitsForRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	core, logs := observer.New(zap.WarnLevel)
	bridge := NewRedisBridge(client, NewBus(zap.NewNop()), "test:updates", zap.New(core))
	bridge.backoff = fastBackoff

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- bridge.Run(ctx) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("redis update channel unavailable, retrying").Len() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, mr.Restart())
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:updates")["test:updates"] == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop")
	}
}

func TestMQTTBridgeKeepsRetryingUnreachableBroker(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bridge := NewMQTTBridge(MQTTOptions{
		Broker:   "tcp://127.0.0.1:1",
		ClientID: "evadmin-test",
		Backoff:  fastBackoff,
	}, func(context.Context, string, string, string) error { return nil }, &recordingPublisher{}, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- bridge.Run(ctx) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("mqtt broker unavailable, retrying").Len() >= 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not stop")
	}
}

package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis pub/sub channel shared by service instances.
const DefaultChannel = "evadmin:updates"

// RedisBridge mirrors the local bus onto a Redis channel so that every
// instance re-renders when any instance changes a record.
type RedisBridge struct {
	client  *redis.Client
	bus     *Bus
	channel string
	origin  string
	backoff Backoff
	logger  *zap.Logger
}

// NewRedisBridge builds a bridge with a fresh instance origin id.
func NewRedisBridge(client *redis.Client, bus *Bus, channel string, logger *zap.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{
		client:  client,
		bus:     bus,
		channel: channel,
		origin:  uuid.NewString(),
		backoff: DefaultBackoff,
		logger:  logger,
	}
}

// Origin identifies this instance in forwarded updates.
func (b *RedisBridge) Origin() string {
	return b.origin
}

// Run forwards local updates to Redis and remote updates to the bus until
// ctx is done. A failed subscription is retried with backoff.
func (b *RedisBridge) Run(ctx context.Context) error {
	return retry(ctx, b.backoff, b.logger, "redis update channel", b.session)
}

func (b *RedisBridge) session(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("feed: subscribe %s: %w", b.channel, err)
	}

	local := b.bus.Subscribe("", 64)
	defer local.Close()
	remote := pubsub.Channel()

	b.logger.Info("redis update bridge started", zap.String("channel", b.channel), zap.String("origin", b.origin))
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-local.C:
			if !ok {
				return nil
			}
			if u.Origin != "" {
				continue
			}
			b.forward(ctx, u)
		case msg, ok := <-remote:
			if !ok {
				return fmt.Errorf("feed: channel %s closed", b.channel)
			}
			b.receive(ctx, msg.Payload)
		}
	}
}

func (b *RedisBridge) forward(ctx context.Context, u Update) {
	u.Origin = b.origin
	data, err := json.Marshal(u)
	if err != nil {
		b.logger.Warn("failed to encode update", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Warn("failed to publish update", zap.String("entity", u.Entity), zap.Error(err))
	}
}

func (b *RedisBridge) receive(ctx context.Context, payload string) {
	var u Update
	if err := json.Unmarshal([]byte(payload), &u); err != nil {
		b.logger.Warn("discarding malformed update", zap.Error(err))
		return
	}
	if u.Origin == b.origin || u.Entity == "" {
		return
	}
	if u.Origin == "" {
		u.Origin = "external"
	}
	b.bus.Publish(ctx, u)
}

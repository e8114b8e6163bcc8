package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/catalog"
)

// Cached decorates a provider with a Redis page cache. Cache keys embed a
// per-entity generation; Invalidate bumps it so pages cached before an
// update are never served after it. Redis failures fall through to the
// wrapped provider.
type Cached[R any] struct {
	inner  catalog.Provider[R]
	client *redis.Client
	entity string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached wraps inner.
func NewCached[R any](inner catalog.Provider[R], client *redis.Client, entity string, ttl time.Duration, logger *zap.Logger) *Cached[R] {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cached[R]{inner: inner, client: client, entity: entity, ttl: ttl, logger: logger}
}

func (c *Cached[R]) genKey() string {
	return fmt.Sprintf("listview:%s:gen", c.entity)
}

func (c *Cached[R]) pageKey(gen int64, q listview.Query) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("listview:%s:%d:%016x", c.entity, gen, xxhash.Sum64(data)), nil
}

func (c *Cached[R]) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// FetchPage serves from cache when possible.
func (c *Cached[R]) FetchPage(ctx context.Context, q listview.Query) (listview.Page[R], error) {
	q = q.Normalize()
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("page cache unavailable", zap.String("entity", c.entity), zap.Error(err))
		return c.inner.FetchPage(ctx, q)
	}
	key, err := c.pageKey(gen, q)
	if err != nil {
		return c.inner.FetchPage(ctx, q)
	}

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var page listview.Page[R]
		if err := json.Unmarshal(data, &page); err == nil {
			return page, nil
		}
		c.logger.Warn("discarding corrupt cached page", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("page cache read failed", zap.String("entity", c.entity), zap.Error(err))
	}

	page, err := c.inner.FetchPage(ctx, q)
	if err != nil {
		return page, err
	}
	if data, err := json.Marshal(page); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("page cache write failed", zap.String("entity", c.entity), zap.Error(err))
		}
	}
	return page, nil
}

// Invalidate retires every cached page of the entity.
func (c *Cached[R]) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, c.genKey()).Err(); err != nil {
		c.logger.Warn("page cache invalidation failed", zap.String("entity", c.entity), zap.Error(err))
	}
}

// Get is not cached.
func (c *Cached[R]) Get(ctx context.Context, id string) (R, error) {
	return c.inner.Get(ctx, id)
}

// SetStatus writes through and invalidates.
func (c *Cached[R]) SetStatus(ctx context.Context, id, status string) (R, error) {
	r, err := c.inner.SetStatus(ctx, id, status)
	if err == nil {
		c.Invalidate(ctx)
	}
	return r, err
}

// Transition writes through and invalidates.
func (c *Cached[R]) Transition(ctx context.Context, id, status string) (R, error) {
	r, err := c.inner.Transition(ctx, id, status)
	if err == nil {
		c.Invalidate(ctx)
	}
	return r, err
}

// FetchAll is not cached.
func (c *Cached[R]) FetchAll(ctx context.Context, q listview.Query, limit int) ([]R, error) {
	return c.inner.FetchAll(ctx, q, limit)
}

// CountByStatus is not cached.
func (c *Cached[R]) CountByStatus(ctx context.Context) (map[string]int, error) {
	return c.inner.CountByStatus(ctx)
}

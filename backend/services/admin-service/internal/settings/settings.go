// Package settings stores per-admin console preferences.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"evadmin/backend/libs/format"
)

// ErrUnsupportedLanguage is returned for a tag outside format.Languages.
var ErrUnsupportedLanguage = errors.New("settings: unsupported language")

// Store persists the interface language of each admin.
type Store interface {
	Language(ctx context.Context, adminID string) (string, error)
	SetLanguage(ctx context.Context, adminID, lang string) error
}

func validate(lang string) error {
	if !format.SupportedLanguage(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return nil
}

// RedisStore keeps one key per admin without expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(adminID string) string {
	return fmt.Sprintf("settings:%s:language", adminID)
}

// Language returns the stored language or format.DefaultLanguage.
func (s *RedisStore) Language(ctx context.Context, adminID string) (string, error) {
	lang, err := s.client.Get(ctx, s.key(adminID)).Result()
	if errors.Is(err, redis.Nil) {
		return format.DefaultLanguage, nil
	}
	if err != nil {
		return "", err
	}
	if !format.SupportedLanguage(lang) {
		return format.DefaultLanguage, nil
	}
	return lang, nil
}

// SetLanguage stores lang for adminID.
func (s *RedisStore) SetLanguage(ctx context.Context, adminID, lang string) error {
	if err := validate(lang); err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(adminID), lang, 0).Err()
}

// MemoryStore is used when Redis is not configured.
type MemoryStore struct {
	mu    sync.RWMutex
	langs map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{langs: make(map[string]string)}
}

// Language returns the stored language or format.DefaultLanguage.
func (s *MemoryStore) Language(_ context.Context, adminID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if lang, ok := s.langs[adminID]; ok {
		return lang, nil
	}
	return format.DefaultLanguage, nil
}

// SetLanguage stores lang for adminID.
func (s *MemoryStore) SetLanguage(_ context.Context, adminID, lang string) error {
	if err := validate(lang); err != nil {
		return err
	}
	s.mu.Lock()
	s.langs[adminID] = lang
	s.mu.Unlock()
	return nil
}

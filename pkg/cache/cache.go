// Package cache is the key/value store behind sessions and the category
// list. Values are stored as JSON. Two drivers exist: Redis for deployments
// and an in-process map for development and tests.
//
//	if err := cache.Connect(); err != nil {
//	    logger.Warn("cache: falling back to memory", "error", err)
//	}
//	var cats []models.Category
//	if !cache.Get(ctx, "categories:all", &cats) { ... }
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ultranet/catalog/config"
	"github.com/ultranet/catalog/pkg/logger"
	"github.com/ultranet/catalog/pkg/metrics"
)

// Store is a cache driver.
type Store interface {
	// Get decodes the value at key into dest. A miss is (false, nil).
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Driver() string
}

var (
	mu    sync.RWMutex
	store Store = NewMemoryStore()
)

// Connect selects the driver from CACHE_DRIVER. When Redis is configured but
// unreachable the memory driver stays active and the ping error is returned
// so the caller can log it.
func Connect() error {
	if config.CacheDriver() == "memory" {
		Use(NewMemoryStore())
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})
	rs := NewRedisStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		_ = client.Close()
		Use(NewMemoryStore())
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	Use(rs)
	return nil
}

// Use replaces the active store.
func Use(s Store) {
	mu.Lock()
	store = s
	mu.Unlock()
}

// Default returns the active store.
func Default() Store {
	mu.RLock()
	defer mu.RUnlock()
	return store
}

// Get reads key into dest through the active store. Returns true on a hit.
// Driver errors are logged and reported as a miss.
func Get(ctx context.Context, key string, dest any) bool {
	s := Default()
	ok, err := s.Get(ctx, key, dest)
	if err != nil {
		logger.WithCtx(ctx).Warn("cache: get failed", "key", key, "error", err)
	}
	if ok {
		metrics.CacheHits.WithLabelValues(s.Driver()).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(s.Driver()).Inc()
	}
	return ok
}

// Set stores value under key for ttl.
func Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return Default().Set(ctx, key, value, ttl)
}

// Forget removes keys.
func Forget(ctx context.Context, keys ...string) error {
	return Default().Delete(ctx, keys...)
}

// Remember returns the cached value at key, or calls load, caches its
// result and decodes it into dest.
func Remember(ctx context.Context, key string, ttl time.Duration, dest any, load func() (any, error)) error {
	if Get(ctx, key, dest) {
		return nil
	}
	v, err := load()
	if err != nil {
		return err
	}
	if err := Set(ctx, key, v, ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache: set failed", "key", key, "error", err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return json.Unmarshal(raw, dest)
}

// ─── Memory driver ────────────────────────────────────────────────────────────

type memoryItem struct {
	data    []byte
	expires time.Time // zero = no expiry
}

// MemoryStore is a process-local Store. Expired entries are dropped lazily.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !item.expires.IsZero() && m.now().After(item.expires) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(item.data, dest); err != nil {
		return false, fmt.Errorf("cache: unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	item := memoryItem{data: data}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Driver() string { return "memory" }

// Package cache implements the time-bounded keyed caches used for current
// readings, forecasts and dashboard views.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/withmandala/go-log"

	"github.com/i474232898/air-quality-dashboard/internal/logging"
	"github.com/i474232898/air-quality-dashboard/internal/store"
)

// Entry is a cached value plus the time it was stored, in milliseconds since
// the Unix epoch.
type Entry[V any] struct {
	Data      V     `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

// Config controls a TTL cache. Store and Key are optional; when both are set
// every mutation is mirrored to Store under Key as a JSON array of
// [key, entry] pairs.
type Config struct {
	TTL    time.Duration
	Store  store.KV
	Key    string
	Now    func() time.Time
	Logger *log.Logger
}

// TTL is a concurrency-safe map whose entries expire after a fixed age.
type TTL[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]

	ttl    time.Duration
	kv     store.KV
	kvKey  string
	now    func() time.Time
	logger *log.Logger
}

// New creates an empty cache.
func New[V any](cfg Config) *TTL[V] {
	c := &TTL[V]{
		entries: make(map[string]Entry[V]),
		ttl:     cfg.TTL,
		kv:      cfg.Store,
		kvKey:   cfg.Key,
		now:     cfg.Now,
		logger:  cfg.Logger,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	return c
}

// Get returns the value for key if it is younger than the TTL.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().UnixMilli()-e.Timestamp >= c.ttl.Milliseconds() {
		var zero V
		return zero, false
	}
	return e.Data, true
}

// Peek returns the value for key regardless of its age.
func (c *TTL[V]) Peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e.Data, ok
}

// StoredAt returns when key was written.
func (c *TTL[V]) StoredAt(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(e.Timestamp), true
}

// Set stores value under key. A failed persisted write is logged and
// otherwise ignored.
func (c *TTL[V]) Set(ctx context.Context, key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[V]{Data: value, Timestamp: c.now().UnixMilli()}

	if err := c.persistLocked(ctx); err != nil {
		c.logger.Errorf("cache %s: saving failed: %v", c.kvKey, err)
	}
}

// Len returns the number of entries, fresh or not.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry and the persisted copy in one step; no reader can
// observe the map cleared while the persisted copy still exists.
func (c *TTL[V]) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry[V])
	if c.kv == nil || c.kvKey == "" {
		return
	}
	if err := c.kv.Remove(ctx, c.kvKey); err != nil {
		c.logger.Errorf("cache %s: removing persisted copy failed: %v", c.kvKey, err)
	}
}

// Restore replaces the in-memory entries with the persisted copy. A missing
// copy leaves the cache empty and is not an error.
func (c *TTL[V]) Restore(ctx context.Context) error {
	if c.kv == nil || c.kvKey == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.kv.Get(ctx, c.kvKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cache %s: %w", c.kvKey, err)
	}

	entries, err := decodePairs[V](raw)
	if err != nil {
		return fmt.Errorf("decode cache %s: %w", c.kvKey, err)
	}
	c.entries = entries
	return nil
}

func (c *TTL[V]) persistLocked(ctx context.Context) error {
	if c.kv == nil || c.kvKey == "" {
		return nil
	}
	raw, err := encodePairs(c.entries)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, c.kvKey, raw)
}

func encodePairs[V any](entries map[string]Entry[V]) (string, error) {
	pairs := make([][2]any, 0, len(entries))
	for k, e := range entries {
		pairs = append(pairs, [2]any{k, e})
	}
	raw, err := json.Marshal(pairs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodePairs[V any](raw string) (map[string]Entry[V], error) {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, err
	}

	entries := make(map[string]Entry[V], len(pairs))
	for _, p := range pairs {
		var key string
		if err := json.Unmarshal(p[0], &key); err != nil {
			return nil, err
		}
		var e Entry[V]
		if err := json.Unmarshal(p[1], &e); err != nil {
			return nil, err
		}
		entries[key] = e
	}
	return entries, nil
}

package memory

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

type Config struct {
	// CleanupInterval - как часто выметать просроченное, по умолчанию 5 минут
	CleanupInterval time.Duration
}

// Cache - in-memory кеш с TTL. OnEvict вызывается для записей,
// удаленных по истечении срока (не для Delete).
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]item[V]
	onEvict  func(key string, value V)
	stopChan chan struct{}
	stopped  bool
}

func New[V any](cfg Config) *Cache[V] {
	return NewWithContext[V](context.Background(), cfg)
}

func NewWithContext[V any](ctx context.Context, cfg Config) *Cache[V] {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	c := &Cache[V]{
		items:    make(map[string]item[V]),
		stopChan: make(chan struct{}),
	}
	go c.cleanup(ctx, cfg.CleanupInterval)
	return c
}

// OnEvict задает колбэк. Вызывать до начала работы с кешем.
func (c *Cache[V]) OnEvict(fn func(key string, value V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || time.Now().After(it.expiresAt) {
		var zero V
		return zero, false
	}
	return it.value, true
}

func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = item[V]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Touch продлевает TTL существующей записи.
func (c *Cache[V]) Touch(key string, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok || time.Now().After(it.expiresAt) {
		return false
	}
	it.expiresAt = time.Now().Add(ttl)
	c.items[key] = it
	return true
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len считает и просроченные, но еще не выметенные записи.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[V]) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.stopChan)
	}
	c.mu.Unlock()
}

func (c *Cache[V]) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.RemoveExpired()
		}
	}
}

// RemoveExpired выметает просроченные записи и возвращает их число.
func (c *Cache[V]) RemoveExpired() int {
	c.mu.Lock()
	now := time.Now()
	type evicted struct {
		key   string
		value V
	}
	var gone []evicted
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			gone = append(gone, evicted{k, it.value})
			delete(c.items, k)
		}
	}
	onEvict := c.onEvict
	c.mu.Unlock()

	// колбэк без блокировки, он может звать кеш
	if onEvict != nil {
		for _, e := range gone {
			onEvict(e.key, e.value)
		}
	}
	return len(gone)
}

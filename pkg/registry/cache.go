package registry

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// DefaultCacheTTL bounds how stale a cached app record may get. Webhook
// subscription changes become visible within this window.
const DefaultCacheTTL = 30 * time.Second

// DefaultCacheSize caps the number of cached apps.
const DefaultCacheSize = 1000

// Cached wraps a Registry with a read-through in-memory cache. The dispatch
// worker resolves an app per consumed job; without the cache a busy app
// would hammer the backend once per notification.
type Cached struct {
	inner   Registry
	ttl     time.Duration
	maxSize int

	mu    sync.Mutex
	items map[string]cacheItem
	lru   []string
}

type cacheItem struct {
	app       hook.App
	expiresAt time.Time
}

// CacheOption configures the cache decorator.
type CacheOption func(*Cached)

// WithTTL overrides the cache entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cached) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxSize overrides the cache capacity.
func WithMaxSize(n int) CacheOption {
	return func(c *Cached) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// NewCached wraps inner with a read-through cache.
func NewCached(inner Registry, opts ...CacheOption) *Cached {
	c := &Cached{
		inner:   inner,
		ttl:     DefaultCacheTTL,
		maxSize: DefaultCacheSize,
		items:   make(map[string]cacheItem),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindByKey implements Registry. Lookup failures are not cached: a missing
// app may simply not have replicated yet.
func (c *Cached) FindByKey(ctx context.Context, key string) (*hook.App, error) {
	if app, ok := c.get(key); ok {
		return app, nil
	}

	app, err := c.inner.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	c.set(key, *app)
	return app, nil
}

// Invalidate drops one app from the cache, forcing the next lookup through.
func (c *Cached) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; ok {
		delete(c.items, key)
		c.removeLRU(key)
	}
}

func (c *Cached) get(key string) (*hook.App, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, key)
		c.removeLRU(key)
		return nil, false
	}

	c.touchLRU(key)
	app := item.app
	return &app, true
}

func (c *Cached) set(key string, app hook.App) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		// Evict the least recently used entry.
		if len(c.lru) > 0 {
			evict := c.lru[0]
			c.lru = c.lru[1:]
			delete(c.items, evict)
		}
	}

	c.items[key] = cacheItem{app: app, expiresAt: time.Now().Add(c.ttl)}
	c.touchLRU(key)
}

func (c *Cached) touchLRU(key string) {
	c.removeLRU(key)
	c.lru = append(c.lru, key)
}

func (c *Cached) removeLRU(key string) {
	for i, k := range c.lru {
		if k == key {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			return
		}
	}
}

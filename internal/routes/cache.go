package routes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/example/cabshare/internal/models"
)

// RouteCache caches computed route info keyed by the raw endpoint pair.
type RouteCache interface {
	Get(ctx context.Context, origin, dest string) (*models.RouteInfo, bool)
	Set(ctx context.Context, origin, dest string, info models.RouteInfo)
}

// Cache is a tiny in-memory TTL cache for route lookups, used when no Redis
// is configured.
type Cache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	v  models.RouteInfo
	ts time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{store: make(map[string]cacheEntry), ttl: ttl}
}

func cacheKey(origin, dest string) string {
	return strings.ToLower(strings.TrimSpace(origin)) + "->" + strings.ToLower(strings.TrimSpace(dest))
}

func (c *Cache) Get(_ context.Context, origin, dest string) (*models.RouteInfo, bool) {
	k := cacheKey(origin, dest)
	c.mu.RLock()
	e, ok := c.store[k]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.store, k)
		c.mu.Unlock()
		return nil, false
	}
	v := e.v
	return &v, true
}

func (c *Cache) Set(_ context.Context, origin, dest string, info models.RouteInfo) {
	k := cacheKey(origin, dest)
	c.mu.Lock()
	c.store[k] = cacheEntry{v: info, ts: time.Now()}
	c.mu.Unlock()
}

package plan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache stores tenant-to-plan-ID lookups for the resolver.
type Cache interface {
	// Get returns the cached plan ID for the tenant, if present and fresh.
	Get(ctx context.Context, tenantID uuid.UUID) (string, bool)

	// Set stores the plan ID with the given TTL.
	Set(ctx context.Context, tenantID uuid.UUID, planID string, ttl time.Duration)

	// Delete evicts the tenant's entry, e.g. after a subscription change.
	Delete(ctx context.Context, tenantID uuid.UUID)
}

// memCache is the default in-process cache implementation.
type memCache struct {
	mu    sync.RWMutex
	items map[uuid.UUID]memCacheItem
}

type memCacheItem struct {
	planID    string
	expiresAt time.Time
}

// NewMemoryCache returns an in-process Cache. Expired entries are dropped
// lazily on read, which is enough for the small working set of active
// tenants per process.
func NewMemoryCache() Cache {
	return &memCache{items: make(map[uuid.UUID]memCacheItem)}
}

func (c *memCache) Get(ctx context.Context, tenantID uuid.UUID) (string, bool) {
	c.mu.RLock()
	item, ok := c.items[tenantID]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(item.expiresAt) {
		c.Delete(ctx, tenantID)
		return "", false
	}
	return item.planID, true
}

func (c *memCache) Set(ctx context.Context, tenantID uuid.UUID, planID string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[tenantID] = memCacheItem{planID: planID, expiresAt: time.Now().Add(ttl)}
}

func (c *memCache) Delete(ctx context.Context, tenantID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, tenantID)
}

// redisCache shares plan lookups across processes, so a fleet of web
// workers resolves each tenant's plan once per TTL instead of once per
// worker.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache returns a Cache backed by the given Redis client.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client, prefix: "quotakit:plan:"}
}

func (c *redisCache) Get(ctx context.Context, tenantID uuid.UUID) (string, bool) {
	planID, err := c.client.Get(ctx, c.prefix+tenantID.String()).Result()
	if err != nil {
		// Treat any Redis failure as a miss; the resolver falls back to
		// the subscription store.
		return "", false
	}
	return planID, true
}

func (c *redisCache) Set(ctx context.Context, tenantID uuid.UUID, planID string, ttl time.Duration) {
	_ = c.client.Set(ctx, c.prefix+tenantID.String(), planID, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, tenantID uuid.UUID) {
	_ = c.client.Del(ctx, c.prefix+tenantID.String()).Err()
}

package routes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/cabshare/internal/models"
)

// RedisCache shares computed route info between the API server and the
// backfill worker.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(addr, password, prefix string, ttl time.Duration) *RedisCache {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisCache{client: c, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) key(origin, dest string) string {
	return r.prefix + ":" + cacheKey(origin, dest)
}

func (r *RedisCache) Get(ctx context.Context, origin, dest string) (*models.RouteInfo, bool) {
	b, err := r.client.Get(ctx, r.key(origin, dest)).Bytes()
	if err != nil {
		return nil, false
	}
	var info models.RouteInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, false
	}
	return &info, true
}

func (r *RedisCache) Set(ctx context.Context, origin, dest string, info models.RouteInfo) {
	b, err := json.Marshal(info)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, r.key(origin, dest), b, r.ttl).Err()
}

func (r *RedisCache) Close() error { return r.client.Close() }

package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache backed by a shared Redis instance. Useful when several
// server replicas should share one read cache; expiry is delegated to Redis
// key TTLs.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed cache from a redis:// URL
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// NewRedisWithClient wraps an existing client, sharing its connection pool
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Client exposes the underlying client so other components (rate limiting)
// can share the connection pool
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Get returns the cached value for key
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		// Treat any failure, including redis.Nil, as a miss; the caller
		// falls back to the durable store.
		return nil, false
	}
	return value, true
}

// Set stores value under key with the given ttl
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	_ = r.client.Set(ctx, key, value, ttl).Err()
}

// Invalidate drops a single key
func (r *Redis) Invalidate(ctx context.Context, key string) {
	_ = r.client.Del(ctx, key).Err()
}

// InvalidatePrefix drops every key with the given prefix
func (r *Redis) InvalidatePrefix(ctx context.Context, prefix string) {
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = r.client.Del(ctx, iter.Val()).Err()
	}
}

// HealthCheck verifies the Redis connection
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (r *Redis) Close() error {
	return r.client.Close()
}

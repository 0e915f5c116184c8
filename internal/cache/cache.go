// Package cache provides the TTL read cache used by the persistence layer.
// Entries are valid while now - storedAt < ttl; expired entries are treated
// as misses and purged lazily. The cache is never the source of truth:
// writers must invalidate affected keys before returning.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the expiry applied when callers do not specify one
const DefaultTTL = 5 * time.Minute

// Cache is a key to serialized-value mapping with per-entry expiry
type Cache interface {
	// Get returns the cached value for key, or false on a miss or expiry
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key with the given ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Invalidate drops a single key
	Invalidate(ctx context.Context, key string)

	// InvalidatePrefix drops every key with the given prefix. Write paths use
	// this for coarse per-table invalidation.
	InvalidatePrefix(ctx context.Context, prefix string)

	// HealthCheck verifies the cache backend is reachable
	HealthCheck(ctx context.Context) error
}

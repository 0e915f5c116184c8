package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// Memory is a process-wide in-memory cache. All access goes through a single
// mutex, which keeps it safe for concurrent handlers.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key. Expired entries are purged and
// reported as misses.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.storedAt) >= e.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given ttl
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, storedAt: m.now(), ttl: ttl}
}

// Invalidate drops a single key
func (m *Memory) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// InvalidatePrefix drops every key with the given prefix
func (m *Memory) InvalidatePrefix(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
}

// HealthCheck always succeeds for the in-memory cache
func (m *Memory) HealthCheck(_ context.Context) error {
	return nil
}

// Len returns the number of stored entries, including expired ones that
// have not been purged yet
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

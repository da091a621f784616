package services

import (
	"context"
	"sync"
)

// LookupCache memoizes account lookups for the lifetime of one request, keyed by
// (subject, event). It travels in the request context instead of living on an entity.
type LookupCache struct {
	mu      sync.Mutex
	entries map[lookupKey]lookupEntry
}

type lookupKey struct {
	subject string
	eventID string
}

type lookupEntry struct {
	value string
	err   error
}

// NewLookupCache returns an empty cache.
func NewLookupCache() *LookupCache {
	return &LookupCache{entries: make(map[lookupKey]lookupEntry)}
}

type lookupCacheKey struct{}

// WithLookupCache returns a context carrying c.
func WithLookupCache(ctx context.Context, c *LookupCache) context.Context {
	return context.WithValue(ctx, lookupCacheKey{}, c)
}

// LookupCacheFrom returns the cache carried by ctx, or nil.
func LookupCacheFrom(ctx context.Context) *LookupCache {
	c, _ := ctx.Value(lookupCacheKey{}).(*LookupCache)
	return c
}

// GetOrLoad returns the cached result for (subject, eventID), calling load on a miss.
// Results are cached only when load returns a nil error. A nil cache always calls load.
func (c *LookupCache) GetOrLoad(subject, eventID string, load func() (string, error)) (string, error) {
	if c == nil {
		return load()
	}
	key := lookupKey{subject: subject, eventID: eventID}
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.value, e.err
	}
	c.mu.Unlock()

	value, err := load()
	if err != nil {
		return value, err
	}
	c.mu.Lock()
	c.entries[key] = lookupEntry{value: value}
	c.mu.Unlock()
	return value, nil
}

package cache

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryAdapter implements CacheProvider with a bounded in-process LRU. It is
// used when Redis is disabled; one process then shares one cache across all
// of its views.
type MemoryAdapter struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryAdapter creates an LRU cache holding at most size entries. maxTTL
// bounds how long any entry lives regardless of the expiration passed to Set.
func NewMemoryAdapter(size int, maxTTL time.Duration) *MemoryAdapter {
	if size <= 0 {
		size = 1024
	}
	return &MemoryAdapter{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	entry, ok := a.lru.Get(key)
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	if entry.expired(a.now()) {
		a.lru.Remove(key)
		return nil, providers.ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores a copy of value; expirationSeconds <= 0 keeps it until evicted.
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if expirationSeconds > 0 {
		entry.expiresAt = a.now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	a.lru.Add(key, entry)
	return nil
}

// Delete removes values from cache
func (a *MemoryAdapter) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		a.lru.Remove(key)
	}
	return nil
}

// DeletePattern removes every key matching a glob pattern
func (a *MemoryAdapter) DeletePattern(ctx context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid cache pattern %q: %w", pattern, err)
	}
	for _, key := range a.lru.Keys() {
		if ok, _ := path.Match(pattern, key); ok {
			a.lru.Remove(key)
		}
	}
	return nil
}

// Exists checks if a live key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	entry, ok := a.lru.Peek(key)
	if !ok {
		return false, nil
	}
	return !entry.expired(a.now()), nil
}

// Len reports the number of cached entries, expired or not
func (a *MemoryAdapter) Len() int {
	return a.lru.Len()
}

package services

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	identity  *Identity
	expiresAt time.Time
}

type memoryIdentityCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryIdentityCache is the in-process cache used when no redis address
// is configured.
func NewMemoryIdentityCache() IdentityCache {
	return &memoryIdentityCache{
		entries: map[string]cacheEntry{},
		revoked: map[string]time.Time{},
		now:     time.Now,
	}
}

func (c *memoryIdentityCache) Get(_ context.Context, key string) (*Identity, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	cp := *e.identity
	return &cp, true, nil
}

func (c *memoryIdentityCache) Set(_ context.Context, key string, id *Identity, ttl time.Duration) error {
	if id == nil || ttl <= 0 {
		return nil
	}
	cp := *id
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{identity: &cp, expiresAt: c.now().Add(ttl)}
	c.pruneLocked()
	return nil
}

func (c *memoryIdentityCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryIdentityCache) Revoke(_ context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[key] = c.now().Add(ttl)
	return nil
}

func (c *memoryIdentityCache) IsRevoked(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.revoked[key]
	if !ok {
		return false, nil
	}
	if !c.now().Before(until) {
		delete(c.revoked, key)
		return false, nil
	}
	return true, nil
}

// pruneLocked drops expired entries once the maps grow past a small bound.
func (c *memoryIdentityCache) pruneLocked() {
	if len(c.entries)+len(c.revoked) < 1024 {
		return
	}
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	for k, until := range c.revoked {
		if !now.Before(until) {
			delete(c.revoked, k)
		}
	}
}

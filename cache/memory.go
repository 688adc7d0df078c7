package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	draft     Draft
	expiresAt time.Time
}

type memoryDraftCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryDraftCache keeps drafts in process memory. It is used when Redis
// is disabled or unreachable; drafts do not survive a restart.
func NewMemoryDraftCache(ttl time.Duration) DraftCache {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &memoryDraftCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *memoryDraftCache) Get(_ context.Context, key string) (*Draft, error) {
	c.mu.RLock()
	entry, ok := c.entries[draftKey(key)]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, ErrDraftNotFound
	}
	draft := entry.draft
	return &draft, nil
}

func (c *memoryDraftCache) Put(_ context.Context, key string, draft *Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[draftKey(key)] = memoryEntry{draft: *draft, expiresAt: now.Add(c.ttl)}
	return nil
}

func (c *memoryDraftCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, draftKey(key))
	c.mu.Unlock()
	return nil
}

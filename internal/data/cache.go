package data

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultCacheTTL = time.Hour

// CacheEntry is one stored simulation result.
type CacheEntry struct {
	ID        string
	Kind      string
	Result    any
	ExpiresAt time.Time
}

// ResultCache keeps simulation results in memory so a ledger can be fetched again by
// id after the run that produced it. Entries expire after the TTL.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores result under a fresh id and returns the id.
func (c *ResultCache) Put(kind string, result any) string {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[id] = &CacheEntry{
		ID:        id,
		Kind:      kind,
		Result:    result,
		ExpiresAt: c.now().Add(c.ttl),
	}
	return id
}

// Get retrieves an entry if present and not expired.
func (c *ResultCache) Get(id string) (*CacheEntry, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[id]
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

// Prune drops expired entries and reports how many were removed.
func (c *ResultCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for id, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, id)
			removed++
		}
	}
	return removed
}

// RunJanitor prunes expired entries every interval until ctx is done.
func (c *ResultCache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}

// Package cache holds built snapshots, one slot per key, with explicit
// expiry so an expired snapshot can still be served when a rebuild fails.
package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/constants"
)

// Cache wraps go-cache. Entries never expire inside go-cache itself, so
// no janitor runs; freshness is tracked per entry against the injected
// clock and only Delete or Clear removes an entry.
type Cache struct {
	store *gocache.Cache
	now   func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	staleHits atomic.Int64
}

type entry struct {
	snap      *catalogs.Snapshot
	expiresAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		store: gocache.New(gocache.NoExpiration, 0),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the cache key for an asset source and an optional version.
func Key(assetSource, version string) string {
	if version == "" {
		version = constants.LatestKey
	}
	return assetSource + "|" + version
}

// Get returns the snapshot for key if present and not expired.
func (c *Cache) Get(key string) (*catalogs.Snapshot, bool) {
	e, ok := c.lookup(key)
	if !ok || c.now().After(e.expiresAt) {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.snap, true
}

// GetStale returns the snapshot for key regardless of expiry and counts
// it as a stale hit. Use it only when the snapshot is about to be served.
func (c *Cache) GetStale(key string) (*catalogs.Snapshot, bool) {
	e, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	c.staleHits.Add(1)
	return e.snap, true
}

// Peek returns the snapshot for key regardless of expiry without touching
// the counters.
func (c *Cache) Peek(key string) (*catalogs.Snapshot, bool) {
	e, ok := c.lookup(key)
	return e.snap, ok
}

// Set stores snap under key, replacing any previous entry.
func (c *Cache) Set(key string, snap *catalogs.Snapshot, ttl time.Duration) {
	c.store.Set(key, entry{snap: snap, expiresAt: c.now().Add(ttl)}, gocache.NoExpiration)
}

// ExpiresAt reports when the entry for key goes stale.
func (c *Cache) ExpiresAt(key string) (time.Time, bool) {
	e, ok := c.lookup(key)
	return e.expiresAt, ok
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of entries, stale ones included.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// Stats returns cache statistics.
type Stats struct {
	ItemCount int   `json:"item_count"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	StaleHits int64 `json:"stale_hits"`
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		ItemCount: c.store.ItemCount(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		StaleHits: c.staleHits.Load(),
	}
}

func (c *Cache) lookup(key string) (entry, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return entry{}, false
	}
	e, ok := v.(entry)
	return e, ok
}

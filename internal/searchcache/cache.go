// Package searchcache provides a time-bounded cache of external search
// results, keyed by the normalized query string.
package searchcache

import (
	"strings"
	"sync"
	"time"

	"github.com/helmick/nutriseek/internal/models"
)

// TTL bounds. The default applies when the configured TTL is zero; the
// maximum is enforced so stale provider data cannot linger indefinitely.
const (
	DefaultTTL = 5 * time.Minute
	MaxTTL     = 60 * time.Minute
)

// Entry is one cached result set. An entry is valid only while now < ExpiresAt.
type Entry struct {
	Query     string
	Results   []models.FoodRecord
	Timestamp time.Time
	ExpiresAt time.Time
}

// Cache maps normalized queries to previously fetched external result sets.
// There is no partial-prefix sharing: "rot" and "roti" are distinct keys.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
}

// New creates a cache with the given TTL, clamped to (0, MaxTTL].
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl > MaxTTL {
		ttl = MaxTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
}

// Normalize returns the cache key for a raw query: trimmed and lower-cased.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached results for query if present and unexpired.
// An expired entry is evicted and reported as a miss.
func (c *Cache) Get(query string) ([]models.FoodRecord, bool) {
	key := Normalize(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.ExpiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.Results, true
}

// Put stores results for query and opportunistically sweeps expired entries.
func (c *Cache) Put(query string, results []models.FoodRecord) {
	key := Normalize(query)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = Entry{
		Query:     key,
		Results:   results,
		Timestamp: now,
		ExpiresAt: now.Add(c.ttl),
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package navigation

import (
	"sync"
	"time"
)

const (
	DefaultTTL  = 5 * time.Minute
	VolatileTTL = time.Minute
)

// VolatileSections change often enough to use the short TTL.
var VolatileSections = []string{"dashboard", "analytics"}

type cacheEntry struct {
	fragment   string
	capturedAt time.Time
}

// Cache holds fetched section fragments. It has no size bound: the set of sections is fixed.
type Cache struct {
	clock       Clock
	defaultTTL  time.Duration
	volatileTTL time.Duration
	volatile    map[string]bool

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache returns an empty Cache. Zero TTLs fall back to DefaultTTL and VolatileTTL.
func NewCache(clock Clock, defaultTTL, volatileTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if volatileTTL <= 0 {
		volatileTTL = VolatileTTL
	}
	volatile := make(map[string]bool, len(VolatileSections))
	for _, s := range VolatileSections {
		volatile[s] = true
	}
	return &Cache{
		clock:       clock,
		defaultTTL:  defaultTTL,
		volatileTTL: volatileTTL,
		volatile:    volatile,
		entries:     make(map[string]cacheEntry),
	}
}

// TTL returns how long a fragment of `section` stays valid.
func (c *Cache) TTL(section string) time.Duration {
	if c.volatile[section] {
		return c.volatileTTL
	}
	return c.defaultTTL
}

// Get returns the stored fragment, valid or not.
func (c *Cache) Get(section string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[section]
	return e.fragment, ok
}

func (c *Cache) Put(section, fragment string) {
	c.mu.Lock()
	c.entries[section] = cacheEntry{fragment: fragment, capturedAt: c.clock.Now()}
	c.mu.Unlock()
}

// IsValid reports whether `section` is cached and younger than its TTL.
func (c *Cache) IsValid(section string) bool {
	c.mu.RLock()
	e, ok := c.entries[section]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return c.clock.Now().Sub(e.capturedAt) < c.TTL(section)
}

// CapturedAt returns when `section` was stored.
func (c *Cache) CapturedAt(section string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[section]
	return e.capturedAt, ok
}

func (c *Cache) Invalidate(section string) {
	c.mu.Lock()
	delete(c.entries, section)
	c.mu.Unlock()
}

// InvalidateAll drops every fragment and timestamp at once.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

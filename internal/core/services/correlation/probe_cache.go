// Package correlation recovers hidden SSIDs from client probe behaviour.
package correlation

import (
	"container/list"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

const (
	// DefaultProbeCacheSize bounds the cache; the oldest entry goes first.
	DefaultProbeCacheSize = 50
	// DefaultProbeTTL is how long a probe stays usable for correlation.
	DefaultProbeTTL = 30 * time.Second
)

// ProbeCache is a FIFO-capped, time-windowed list of probe requests in
// arrival order.
type ProbeCache struct {
	capacity int
	ttl      time.Duration
	entries  *list.List
}

// NewProbeCache creates a cache. Non-positive arguments select the defaults.
func NewProbeCache(capacity int, ttl time.Duration) *ProbeCache {
	if capacity <= 0 {
		capacity = DefaultProbeCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultProbeTTL
	}
	return &ProbeCache{capacity: capacity, ttl: ttl, entries: list.New()}
}

// Add appends e, dropping the oldest entry when full. It reports whether an
// entry was dropped.
func (c *ProbeCache) Add(e domain.ProbeEntry) bool {
	e.SSID.Raw = append([]byte(nil), e.SSID.Raw...)
	c.entries.PushBack(e)
	if c.entries.Len() > c.capacity {
		c.entries.Remove(c.entries.Front())
		return true
	}
	return false
}

// Purge removes entries older than the TTL at now and returns how many.
func (c *ProbeCache) Purge(now time.Time) int {
	removed := 0
	for el := c.entries.Front(); el != nil; {
		next := el.Next()
		if now.Sub(el.Value.(domain.ProbeEntry).Timestamp) > c.ttl {
			c.entries.Remove(el)
			removed++
		}
		el = next
	}
	return removed
}

// Each calls fn on entries oldest first until fn returns false.
func (c *ProbeCache) Each(fn func(domain.ProbeEntry) bool) {
	for el := c.entries.Front(); el != nil; el = el.Next() {
		if !fn(el.Value.(domain.ProbeEntry)) {
			return
		}
	}
}

// Entries returns copies of all entries, oldest first.
func (c *ProbeCache) Entries() []domain.ProbeEntry {
	out := make([]domain.ProbeEntry, 0, c.entries.Len())
	c.Each(func(e domain.ProbeEntry) bool {
		e.SSID.Raw = append([]byte(nil), e.SSID.Raw...)
		out = append(out, e)
		return true
	})
	return out
}

func (c *ProbeCache) Len() int { return c.entries.Len() }

func (c *ProbeCache) Clear() { c.entries.Init() }

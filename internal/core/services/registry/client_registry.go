package registry

import (
	"context"
	"sort"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// DefaultMaxClients bounds the client table.
const DefaultMaxClients = 300

// ClientRegistry is the bounded table of stations keyed by MAC, with the
// same oldest-LastSeen eviction as APRegistry.
type ClientRegistry struct {
	capacity int
	clients  map[domain.MAC]*domain.Client
	ages     *ageIndex
	vendors  ports.VendorLookup
}

// NewClientRegistry creates a registry holding at most capacity records.
// vendors may be nil.
func NewClientRegistry(capacity int, vendors ports.VendorLookup) *ClientRegistry {
	if capacity <= 0 {
		capacity = DefaultMaxClients
	}
	return &ClientRegistry{
		capacity: capacity,
		clients:  make(map[domain.MAC]*domain.Client, capacity),
		ages:     newAgeIndex(),
		vendors:  vendors,
	}
}

func (r *ClientRegistry) Len() int      { return len(r.clients) }
func (r *ClientRegistry) Capacity() int { return r.capacity }

// Get returns the live record for mac.
func (r *ClientRegistry) Get(mac domain.MAC) (*domain.Client, bool) {
	c, ok := r.clients[mac]
	return c, ok
}

// FindOrCreate returns the record for mac, creating it when missing.
// If creation needed room, the evicted record is returned.
func (r *ClientRegistry) FindOrCreate(ctx context.Context, mac domain.MAC, now time.Time) (c *domain.Client, created bool, evicted *domain.Client) {
	if c, ok := r.clients[mac]; ok {
		return c, false, nil
	}
	evicted = r.EvictIfFull()

	c = &domain.Client{
		MAC:          mac,
		Manufacturer: r.lookupVendor(ctx, mac),
		FirstSeen:    now,
		LastSeen:     now,
	}
	r.clients[mac] = c
	r.ages.touch(mac, now)
	return c, true, evicted
}

func (r *ClientRegistry) lookupVendor(ctx context.Context, mac domain.MAC) string {
	if r.vendors == nil {
		return ""
	}
	vendor, err := r.vendors.LookupVendor(ctx, mac)
	if err != nil {
		return ""
	}
	return vendor
}

// EvictIfFull removes the least recently seen record when at capacity.
func (r *ClientRegistry) EvictIfFull() *domain.Client {
	if len(r.clients) < r.capacity {
		return nil
	}
	mac, _, ok := r.ages.oldest()
	if !ok {
		return nil
	}
	return r.Remove(mac)
}

// Remove deletes mac and returns its record.
func (r *ClientRegistry) Remove(mac domain.MAC) *domain.Client {
	c, ok := r.clients[mac]
	if !ok {
		return nil
	}
	delete(r.clients, mac)
	r.ages.remove(mac)
	return c
}

// Update folds the radio metadata of one frame into c.
func (r *ClientRegistry) Update(c *domain.Client, obs domain.Observation) {
	mergeClient(c, obs)
	r.ages.touch(c.MAC, c.LastSeen)
}

// RecordProbe updates the probe bookkeeping of c: counters, the last probed
// SSID and the SSID history. Directed probes also land in ProbedAPs.
func (r *ClientRegistry) RecordProbe(c *domain.Client, ssid domain.SSIDStatus, target domain.MAC, now time.Time) {
	c.ProbeCount++
	c.ProbingActive = true
	c.LastProbeTime = now
	c.LastProbedSSID = ssid

	if !target.IsUndirected() {
		addProbedAP(c, target)
	}
	if !ssid.IsAbsent() {
		addSSIDHistory(c, ssid, now)
	}
}

func addProbedAP(c *domain.Client, bssid domain.MAC) {
	for _, m := range c.ProbedAPs {
		if m == bssid {
			return
		}
	}
	c.ProbedAPs = append(c.ProbedAPs, bssid)
	if len(c.ProbedAPs) > domain.MaxProbedAPs {
		c.ProbedAPs = append(c.ProbedAPs[:0], c.ProbedAPs[1:]...)
	}
}

// addSSIDHistory records ssid, evicting the least recently seen entry when
// the history is full.
func addSSIDHistory(c *domain.Client, ssid domain.SSIDStatus, now time.Time) {
	for i := range c.SSIDHistory {
		h := &c.SSIDHistory[i]
		if h.SSID.Equal(ssid) {
			h.LastSeen = now
			h.ProbeCount++
			return
		}
	}
	if len(c.SSIDHistory) >= domain.MaxSSIDHistory {
		oldest := 0
		for i, h := range c.SSIDHistory {
			if h.LastSeen.Before(c.SSIDHistory[oldest].LastSeen) {
				oldest = i
			}
		}
		c.SSIDHistory = append(c.SSIDHistory[:oldest], c.SSIDHistory[oldest+1:]...)
	}
	c.SSIDHistory = append(c.SSIDHistory, domain.SSIDHistoryEntry{
		SSID:       ssid,
		FirstSeen:  now,
		LastSeen:   now,
		ProbeCount: 1,
		Hidden:     ssid.IsHidden(),
	})
}

// Stale returns clients last seen before cutoff.
func (r *ClientRegistry) Stale(cutoff time.Time) []domain.MAC {
	var out []domain.MAC
	for mac, c := range r.clients {
		if c.LastSeen.Before(cutoff) {
			out = append(out, mac)
		}
	}
	return out
}

// Snapshot returns deep copies ordered by signal strength, strongest first.
func (r *ClientRegistry) Snapshot() []domain.Client {
	out := make([]domain.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RSSI != out[j].RSSI {
			return out[i].RSSI > out[j].RSSI
		}
		return out[i].MAC.String() < out[j].MAC.String()
	})
	return out
}

// Clear drops every record.
func (r *ClientRegistry) Clear() {
	r.clients = make(map[domain.MAC]*domain.Client, r.capacity)
	r.ages.clear()
}

// ExpireProbing clears ProbingActive on clients whose last probe is older
// than cutoff.
func (r *ClientRegistry) ExpireProbing(cutoff time.Time) {
	for _, c := range r.clients {
		if c.ProbingActive && c.LastProbeTime.Before(cutoff) {
			c.ProbingActive = false
		}
	}
}

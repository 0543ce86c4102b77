package scan

import (
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// AccessPoints returns copies of all AP records, strongest first.
func (c *Controller) AccessPoints() []domain.AccessPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracker.APs.Snapshot()
}

// AccessPoint returns a copy of one AP record.
func (c *Controller) AccessPoint(bssid domain.MAC) (domain.AccessPoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ap, ok := c.tracker.APs.Get(bssid)
	if !ok {
		return domain.AccessPoint{}, false
	}
	return ap.Clone(), true
}

// Clients returns copies of all client records, strongest first.
func (c *Controller) Clients() []domain.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracker.Clients.Snapshot()
}

// Associations returns the association index.
func (c *Controller) Associations() []domain.Association {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracker.Index.Snapshot()
}

// ProbeCache returns the cached probe requests, oldest first.
func (c *Controller) ProbeCache() []domain.ProbeEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revealer.Cache().Entries()
}

// SSIDStats returns the per-SSID statistics, most probed first.
func (c *Controller) SSIDStats() []domain.SSIDStat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ssids.Snapshot()
}

func (c *Controller) Counts() domain.Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.countsLocked()
}

func (c *Controller) countsLocked() domain.Counts {
	total, hidden, revealed := c.tracker.APs.Counts()
	return domain.Counts{
		AccessPoints: total,
		Hidden:       hidden,
		Revealed:     revealed,
		Clients:      c.tracker.Clients.Len(),
		Associations: c.tracker.Index.Len(),
		Probes:       c.revealer.Cache().Len(),
	}
}

// Status returns a copy of the scan state.
func (c *Controller) Status() domain.ScanState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Channels = append([]int(nil), c.state.Channels...)
	return s
}

// Statistics returns the frame counters of the current session.
func (c *Controller) Statistics() domain.Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statisticsLocked()
}

func (c *Controller) statisticsLocked() domain.Statistics {
	s := c.stats
	s.Dropped += c.dropped.Load()
	return s
}

package registry

import (
	"sort"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// DefaultMaxSSIDStats bounds the SSID statistics list.
const DefaultMaxSSIDStats = 100

// maxSSIDClients bounds the client list kept per SSID.
const maxSSIDClients = 50

// SSIDSource says which frame kind produced a sighting.
type SSIDSource uint8

const (
	FromProbeRequest SSIDSource = iota
	FromBeacon
	FromProbeResponse
)

type ssidKey struct {
	raw    string
	length int
	hidden bool
}

// SSIDManager aggregates SSID sightings across the session. When full, the
// entry with the oldest LastSeen is dropped.
type SSIDManager struct {
	capacity int
	stats    map[ssidKey]*domain.SSIDStat
}

// NewSSIDManager creates a manager holding at most capacity SSIDs.
func NewSSIDManager(capacity int) *SSIDManager {
	if capacity <= 0 {
		capacity = DefaultMaxSSIDStats
	}
	return &SSIDManager{capacity: capacity, stats: make(map[ssidKey]*domain.SSIDStat)}
}

func keyOf(s domain.SSIDStatus) ssidKey {
	return ssidKey{raw: string(s.Raw), length: s.Length, hidden: s.IsHidden()}
}

// Update records one sighting. station is the probing client for probe
// requests and the AP otherwise; bssid is the frame's BSSID.
func (m *SSIDManager) Update(s domain.SSIDStatus, src SSIDSource, station, bssid domain.MAC, rssi, channel int, now time.Time) {
	if s.IsAbsent() {
		return
	}
	k := keyOf(s)
	st, ok := m.stats[k]
	if !ok {
		if len(m.stats) >= m.capacity {
			m.evictOldest()
		}
		st = &domain.SSIDStat{
			SSID:      s.Display(),
			Length:    s.Length,
			BSSID:     bssid,
			Channel:   channel,
			RSSI:      rssi,
			FirstSeen: now,
			Hidden:    s.IsHidden(),
		}
		m.stats[k] = st
	}
	st.LastSeen = now

	switch src {
	case FromProbeRequest:
		st.FromProbeRequest = true
		st.ProbeCount++
		addClient(st, station)
	case FromBeacon:
		st.FromBeacon = true
		st.RSSI, st.Channel, st.BSSID = rssi, channel, bssid
	case FromProbeResponse:
		st.FromProbeResponse = true
		st.RSSI, st.Channel, st.BSSID = rssi, channel, bssid
	}
}

func addClient(st *domain.SSIDStat, mac domain.MAC) {
	for _, c := range st.Clients {
		if c == mac {
			return
		}
	}
	if len(st.Clients) >= maxSSIDClients {
		return
	}
	st.Clients = append(st.Clients, mac)
}

func (m *SSIDManager) evictOldest() {
	var victim ssidKey
	var oldest *domain.SSIDStat
	for k, st := range m.stats {
		if oldest == nil || st.LastSeen.Before(oldest.LastSeen) {
			victim, oldest = k, st
		}
	}
	if oldest != nil {
		delete(m.stats, victim)
	}
}

func (m *SSIDManager) Len() int { return len(m.stats) }

// Snapshot returns copies ordered by probe count, most probed first.
func (m *SSIDManager) Snapshot() []domain.SSIDStat {
	out := make([]domain.SSIDStat, 0, len(m.stats))
	for _, st := range m.stats {
		c := *st
		c.Clients = append([]domain.MAC(nil), st.Clients...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProbeCount != out[j].ProbeCount {
			return out[i].ProbeCount > out[j].ProbeCount
		}
		return out[i].SSID < out[j].SSID
	})
	return out
}

// Clear wipes all statistics.
func (m *SSIDManager) Clear() {
	m.stats = make(map[ssidKey]*domain.SSIDStat)
}

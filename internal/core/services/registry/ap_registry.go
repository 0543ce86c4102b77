package registry

import (
	"sort"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// DefaultMaxAccessPoints bounds the AP table.
const DefaultMaxAccessPoints = 100

// APRegistry is the bounded table of access points keyed by BSSID. When
// full, creating a record evicts the one with the oldest LastSeen.
//
// APRegistry is not safe for concurrent use; the scan controller owns it.
type APRegistry struct {
	capacity int
	aps      map[domain.MAC]*domain.AccessPoint
	ages     *ageIndex
}

// NewAPRegistry creates a registry holding at most capacity records.
func NewAPRegistry(capacity int) *APRegistry {
	if capacity <= 0 {
		capacity = DefaultMaxAccessPoints
	}
	return &APRegistry{
		capacity: capacity,
		aps:      make(map[domain.MAC]*domain.AccessPoint, capacity),
		ages:     newAgeIndex(),
	}
}

func (r *APRegistry) Len() int      { return len(r.aps) }
func (r *APRegistry) Capacity() int { return r.capacity }

// Get returns the live record for bssid.
func (r *APRegistry) Get(bssid domain.MAC) (*domain.AccessPoint, bool) {
	ap, ok := r.aps[bssid]
	return ap, ok
}

// FindOrCreate returns the record for bssid, creating it when missing.
// If creation needed room, the evicted record is returned.
func (r *APRegistry) FindOrCreate(bssid domain.MAC, now time.Time) (ap *domain.AccessPoint, created bool, evicted *domain.AccessPoint) {
	if ap, ok := r.aps[bssid]; ok {
		return ap, false, nil
	}
	evicted = r.EvictIfFull()

	ap = &domain.AccessPoint{
		BSSID:     bssid,
		VendorOUI: bssid.OUIString(),
		FirstSeen: now,
		LastSeen:  now,
	}
	r.aps[bssid] = ap
	r.ages.touch(bssid, now)
	return ap, true, evicted
}

// EvictIfFull removes the least recently seen record when the registry is
// at capacity and returns it.
func (r *APRegistry) EvictIfFull() *domain.AccessPoint {
	if len(r.aps) < r.capacity {
		return nil
	}
	bssid, _, ok := r.ages.oldest()
	if !ok {
		return nil
	}
	return r.Remove(bssid)
}

// Remove deletes bssid and returns its record.
func (r *APRegistry) Remove(bssid domain.MAC) *domain.AccessPoint {
	ap, ok := r.aps[bssid]
	if !ok {
		return nil
	}
	delete(r.aps, bssid)
	r.ages.remove(bssid)
	return ap
}

// Update folds one beacon or probe response into ap.
func (r *APRegistry) Update(ap *domain.AccessPoint, obs domain.Observation, wpsDetection bool) {
	mergeAccessPoint(ap, obs, wpsDetection)
	r.ages.touch(ap.BSSID, ap.LastSeen)
}

// Touch advances LastSeen without any other change.
func (r *APRegistry) Touch(ap *domain.AccessPoint, t time.Time) {
	if t.After(ap.LastSeen) {
		ap.LastSeen = t
		r.ages.touch(ap.BSSID, t)
	}
}

// Reveal moves a hidden AP to known. It reports false when the AP is
// unknown, not hidden, or ssid is blank; a reveal never happens twice.
func (r *APRegistry) Reveal(bssid domain.MAC, ssid []byte, now time.Time, source domain.RevealSource) bool {
	ap, ok := r.aps[bssid]
	if !ok || !ap.Hidden || ap.SSIDKnown {
		return false
	}
	if len(ssid) == 0 || len(ssid) > domain.MaxSSIDLen || zeroed(ssid) {
		return false
	}
	ap.SSID = append([]byte(nil), ssid...)
	ap.DisplaySSID = domain.FormatSSID(ssid)
	ap.OriginalSSIDLen = len(ssid)
	ap.Hidden = false
	ap.SSIDKnown = true
	ap.SSIDRevealed = true
	ap.RevealedAt = now
	ap.RevealSource = source
	return true
}

// Restore inserts a record loaded from a snapshot, keeping its reveal state.
// Associated clients are not restored; they belong to a past session.
func (r *APRegistry) Restore(ap domain.AccessPoint) *domain.AccessPoint {
	if _, ok := r.aps[ap.BSSID]; !ok {
		r.EvictIfFull()
	}
	rec := ap.Clone()
	rec.AssociatedClients = nil
	if rec.Hidden {
		rec.SSIDKnown = false
	}
	r.aps[rec.BSSID] = &rec
	r.ages.touch(rec.BSSID, rec.LastSeen)
	return &rec
}

// Hidden returns the BSSIDs of hidden APs seen at or after since.
func (r *APRegistry) Hidden(since time.Time) []domain.MAC {
	var out []domain.MAC
	for bssid, ap := range r.aps {
		if ap.Hidden && !ap.LastSeen.Before(since) {
			out = append(out, bssid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Snapshot returns deep copies ordered by signal strength, strongest first.
func (r *APRegistry) Snapshot() []domain.AccessPoint {
	out := make([]domain.AccessPoint, 0, len(r.aps))
	for _, ap := range r.aps {
		out = append(out, ap.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RSSI != out[j].RSSI {
			return out[i].RSSI > out[j].RSSI
		}
		return out[i].BSSID.String() < out[j].BSSID.String()
	})
	return out
}

// Counts reports total, hidden and revealed records.
func (r *APRegistry) Counts() (total, hidden, revealed int) {
	for _, ap := range r.aps {
		if ap.Hidden {
			hidden++
		}
		if ap.SSIDRevealed {
			revealed++
		}
	}
	return len(r.aps), hidden, revealed
}

// Clear drops every record.
func (r *APRegistry) Clear() {
	r.aps = make(map[domain.MAC]*domain.AccessPoint, r.capacity)
	r.ages.clear()
}

func zeroed(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

package correlation

import (
	"log/slog"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/services/registry"
)

// RecentWindow is how recently a hidden AP must have been seen for the
// sweep to consider it.
const RecentWindow = 30 * time.Second

// Reveal describes one hidden-to-known transition.
type Reveal struct {
	BSSID  domain.MAC          `json:"bssid"`
	SSID   string              `json:"ssid"`
	Client domain.MAC          `json:"client"`
	Source domain.RevealSource `json:"source"`
	At     time.Time           `json:"at"`
}

// Revealer feeds the probe cache and applies reveals to the AP registry.
// Conflicting claims are settled first-wins: once an AP is known, later
// probes cannot rename it.
type Revealer struct {
	cache *ProbeCache
	aps   *registry.APRegistry
	log   *slog.Logger

	// Debug logs every cached probe and every reveal.
	Debug bool
}

// NewRevealer creates a Revealer over cache and aps.
func NewRevealer(cache *ProbeCache, aps *registry.APRegistry, logger *slog.Logger) *Revealer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Revealer{cache: cache, aps: aps, log: logger}
}

// Cache exposes the probe cache for queries.
func (r *Revealer) Cache() *ProbeCache { return r.cache }

// ObserveProbe caches a probe request that names an SSID and, when it is
// directed at a hidden AP, reveals that AP at once. Wildcard and hidden
// probes carry nothing to correlate and are not cached.
func (r *Revealer) ObserveProbe(p domain.ProbeEntry) (Reveal, bool) {
	if !p.SSID.IsKnown() {
		return Reveal{}, false
	}
	r.cache.Add(p)
	if r.Debug {
		r.log.Debug("probe cached",
			"client", p.Client.String(),
			"ssid", p.SSID.Display(),
			"target", p.Target.String(),
			"rssi", p.RSSI)
	}

	if !p.Directed() {
		return Reveal{}, false
	}
	if !r.aps.Reveal(p.Target, p.SSID.Raw, p.Timestamp, domain.RevealDirectProbe) {
		return Reveal{}, false
	}
	rv := Reveal{BSSID: p.Target, SSID: p.SSID.Display(), Client: p.Client, Source: domain.RevealDirectProbe, At: p.Timestamp}
	r.logReveal(rv)
	return rv, true
}

// Sweep purges expired probes, then tries to reveal every hidden AP seen
// within RecentWindow from the cached probes of its associated clients.
// Clients are tried oldest association first and their probes oldest first.
func (r *Revealer) Sweep(now time.Time) []Reveal {
	r.cache.Purge(now)

	var out []Reveal
	for _, bssid := range r.aps.Hidden(now.Add(-RecentWindow)) {
		ap, ok := r.aps.Get(bssid)
		if !ok {
			continue
		}
		clients := append([]domain.MAC(nil), ap.AssociatedClients...)

		for _, client := range clients {
			var match *domain.ProbeEntry
			r.cache.Each(func(e domain.ProbeEntry) bool {
				if e.Client != client || !e.SSID.IsKnown() {
					return true
				}
				match = &e
				return false
			})
			if match == nil {
				continue
			}
			if r.aps.Reveal(bssid, match.SSID.Raw, now, domain.RevealAssociation) {
				rv := Reveal{BSSID: bssid, SSID: match.SSID.Display(), Client: client, Source: domain.RevealAssociation, At: now}
				r.logReveal(rv)
				out = append(out, rv)
				break
			}
		}
	}
	return out
}

// RevealFromResponse reveals a hidden AP whose probe response carries its
// SSID.
func (r *Revealer) RevealFromResponse(bssid, client domain.MAC, ssid domain.SSIDStatus, at time.Time) (Reveal, bool) {
	if !ssid.IsKnown() || !r.aps.Reveal(bssid, ssid.Raw, at, domain.RevealProbeResponse) {
		return Reveal{}, false
	}
	rv := Reveal{BSSID: bssid, SSID: ssid.Display(), Client: client, Source: domain.RevealProbeResponse, At: at}
	r.logReveal(rv)
	return rv, true
}

func (r *Revealer) logReveal(rv Reveal) {
	r.log.Info("hidden AP revealed",
		"bssid", rv.BSSID.String(),
		"ssid", rv.SSID,
		"client", rv.Client.String(),
		"source", string(rv.Source))
}

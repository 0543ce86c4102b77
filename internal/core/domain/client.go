package domain

import "time"

const (
	MaxSSIDHistory = 20
	MaxProbedAPs   = 10
)

// SSIDHistoryEntry is one SSID a client has probed for.
type SSIDHistoryEntry struct {
	SSID       SSIDStatus `json:"ssid"`
	FirstSeen  time.Time  `json:"first_seen"`
	LastSeen   time.Time  `json:"last_seen"`
	ProbeCount int        `json:"probe_count"`
	Hidden     bool       `json:"hidden"`
}

// Client is the registry record for one station.
type Client struct {
	MAC     MAC `json:"mac"`
	RSSI    int `json:"rssi"`
	Channel int `json:"channel"`

	// APBSSID is nil while the client is unassociated.
	APBSSID *MAC `json:"ap_bssid,omitempty"`

	Manufacturer string    `json:"manufacturer"`
	PacketCount  int       `json:"packet_count"`
	ProbeCount   int       `json:"probe_count"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
	LastKind     FrameKind `json:"last_frame_kind"`

	// Signature identifies the station's driver from the elements of its
	// probe and association requests.
	Signature string `json:"signature,omitempty"`

	SSIDHistory    []SSIDHistoryEntry `json:"ssid_history,omitempty"`
	LastProbedSSID SSIDStatus         `json:"last_probed_ssid"`
	ProbingActive  bool               `json:"probing_active"`
	LastProbeTime  time.Time          `json:"last_probe_time,omitempty"`
	ProbedAPs      []MAC              `json:"probed_aps,omitempty"`
}

// Associated reports whether the client currently belongs to an AP.
func (c *Client) Associated() bool { return c.APBSSID != nil }

// Clone returns a deep copy.
func (c *Client) Clone() Client {
	out := *c
	if c.APBSSID != nil {
		bssid := *c.APBSSID
		out.APBSSID = &bssid
	}
	out.SSIDHistory = append([]SSIDHistoryEntry(nil), c.SSIDHistory...)
	out.ProbedAPs = append([]MAC(nil), c.ProbedAPs...)
	return out
}

// Association is the authoritative client→AP relation record.
type Association struct {
	Client           MAC       `json:"client"`
	BSSID            MAC       `json:"ap_bssid"`
	FirstAssociated  time.Time `json:"first_associated"`
	LastAssociated   time.Time `json:"last_associated"`
	AssociationCount int       `json:"association_count"`
}

// ProbeEntry is one cached probe request.
type ProbeEntry struct {
	Client    MAC        `json:"client"`
	SSID      SSIDStatus `json:"ssid"`
	Target    MAC        `json:"target"`
	RSSI      int        `json:"rssi"`
	Channel   int        `json:"channel"`
	Timestamp time.Time  `json:"timestamp"`
	Hidden    bool       `json:"hidden"`
}

// Directed reports whether the probe named a specific BSSID.
func (p ProbeEntry) Directed() bool { return !p.Target.IsUndirected() }

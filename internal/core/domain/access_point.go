package domain

import (
	"strings"
	"time"
)

// MaxAssociatedClients bounds an AP's associated-client set.
const MaxAssociatedClients = 20

// WPSInfo describes a Wi-Fi Protected Setup element.
type WPSInfo struct {
	Enabled      bool   `json:"enabled"`
	Version      int    `json:"version,omitempty"` // 0 unknown, 1 or 2
	State        string `json:"state,omitempty"`   // "configured", "unconfigured"
	Locked       bool   `json:"locked,omitempty"`
	DeviceName   string `json:"device_name,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
}

// RSNDetails lists the suites an RSN element advertises.
type RSNDetails struct {
	GroupCipher     string   `json:"group_cipher"`
	PairwiseCiphers []string `json:"pairwise_ciphers"`
	AKMs            []string `json:"akms"`
	MFPRequired     bool     `json:"mfp_required"`
	MFPCapable      bool     `json:"mfp_capable"`
}

// Clone returns a deep copy. A nil receiver yields nil.
func (r *RSNDetails) Clone() *RSNDetails {
	if r == nil {
		return nil
	}
	c := *r
	c.PairwiseCiphers = append([]string(nil), r.PairwiseCiphers...)
	c.AKMs = append([]string(nil), r.AKMs...)
	return &c
}

// Summary renders the AKMs and management frame protection compactly,
// e.g. "PSK+SAE MFP-req".
func (r *RSNDetails) Summary() string {
	if r == nil {
		return ""
	}
	s := strings.Join(r.AKMs, "+")
	switch {
	case r.MFPRequired:
		s += " MFP-req"
	case r.MFPCapable:
		s += " MFP"
	}
	return strings.TrimSpace(s)
}

// RevealSource records how a hidden SSID was recovered.
type RevealSource string

const (
	RevealDirectProbe   RevealSource = "direct_probe"
	RevealAssociation   RevealSource = "association"
	RevealProbeResponse RevealSource = "probe_response"
)

// AccessPoint is the registry record for one BSSID.
type AccessPoint struct {
	BSSID           MAC          `json:"bssid"`
	DisplaySSID     string       `json:"ssid"`
	SSID            []byte       `json:"-"` // raw bytes once known
	OriginalSSIDLen int          `json:"original_ssid_len"`
	Hidden          bool         `json:"hidden"`
	SSIDKnown       bool         `json:"ssid_known"`
	SSIDRevealed    bool         `json:"ssid_revealed"`
	RevealedAt      time.Time    `json:"revealed_at,omitempty"`
	RevealSource    RevealSource `json:"reveal_source,omitempty"`

	RSSI           int         `json:"rssi"`
	Channel        int         `json:"channel"`
	Encryption     Encryption  `json:"encryption"`
	RSN            *RSNDetails `json:"rsn,omitempty"`
	WPS            WPSInfo     `json:"wps"`
	VendorOUI      string      `json:"vendor_oui"`
	Capability     uint16      `json:"capability"`
	BeaconInterval uint16      `json:"beacon_interval"`

	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	PacketCount int       `json:"packet_count"`

	// AssociatedClients is ordered oldest first.
	AssociatedClients []MAC `json:"associated_clients"`
}

// Clone returns a deep copy safe to hand outside the registry.
func (a *AccessPoint) Clone() AccessPoint {
	c := *a
	if a.SSID != nil {
		c.SSID = append([]byte(nil), a.SSID...)
	}
	c.RSN = a.RSN.Clone()
	c.AssociatedClients = append([]MAC(nil), a.AssociatedClients...)
	return c
}

// HasClient reports membership in the associated-client set.
func (a *AccessPoint) HasClient(mac MAC) bool {
	for _, c := range a.AssociatedClients {
		if c == mac {
			return true
		}
	}
	return false
}

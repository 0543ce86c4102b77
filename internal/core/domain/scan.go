package domain

import (
	"fmt"
	"time"
)

// ScanMode is the state of the scan controller.
type ScanMode string

const (
	ModeIdle       ScanMode = "idle"
	ModeAPScan     ScanMode = "ap_scan"
	ModeClientScan ScanMode = "client_scan"
)

// ParseScanMode accepts the canonical names plus the short forms "ap" and "sta".
func ParseScanMode(s string) (ScanMode, error) {
	switch s {
	case "ap", string(ModeAPScan):
		return ModeAPScan, nil
	case "sta", "client", string(ModeClientScan):
		return ModeClientScan, nil
	case "stop", "", string(ModeIdle):
		return ModeIdle, nil
	}
	return ModeIdle, fmt.Errorf("unknown scan mode %q", s)
}

// Active reports whether a session is running.
func (m ScanMode) Active() bool { return m == ModeAPScan || m == ModeClientScan }

// ValidChannel reports whether ch is a 2.4 GHz regulatory channel.
func ValidChannel(ch int) bool {
	return ch >= 1 && ch <= 14
}

// DefaultChannels is the hop plan used when none is configured.
func DefaultChannels() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
}

// Feature names a toggle of the scan controller.
type Feature string

const (
	FeatureWPSDetection        Feature = "wps_detection"
	FeatureMACFiltering        Feature = "mac_filtering"
	FeatureProbeSniffing       Feature = "probe_sniffing"
	FeatureAssociationTracking Feature = "association_tracking"
	FeatureSSIDTracking        Feature = "ssid_tracking"
	FeatureProbeDebug          Feature = "probe_debug"
)

// Features holds the toggles. The zero value disables everything; use
// DefaultFeatures for the usual configuration.
type Features struct {
	WPSDetection        bool `json:"wps_detection"`
	MACFiltering        bool `json:"mac_filtering"`
	ProbeSniffing       bool `json:"probe_sniffing"`
	AssociationTracking bool `json:"association_tracking"`
	SSIDTracking        bool `json:"ssid_tracking"`
	ProbeDebug          bool `json:"probe_debug"`
}

func DefaultFeatures() Features {
	return Features{
		WPSDetection:        true,
		MACFiltering:        true,
		ProbeSniffing:       true,
		AssociationTracking: true,
		SSIDTracking:        true,
	}
}

// Set flips one feature by name. It reports false for unknown names.
func (f *Features) Set(name Feature, on bool) bool {
	switch name {
	case FeatureWPSDetection:
		f.WPSDetection = on
	case FeatureMACFiltering:
		f.MACFiltering = on
	case FeatureProbeSniffing:
		f.ProbeSniffing = on
	case FeatureAssociationTracking:
		f.AssociationTracking = on
	case FeatureSSIDTracking:
		f.SSIDTracking = on
	case FeatureProbeDebug:
		f.ProbeDebug = on
	default:
		return false
	}
	return true
}

// ScanState is the process-wide scan session state.
type ScanState struct {
	SessionID      string        `json:"session_id,omitempty"`
	Mode           ScanMode      `json:"mode"`
	Channel        int           `json:"channel"`
	Channels       []int         `json:"channels"`
	HopInterval    time.Duration `json:"hop_interval"`
	StartedAt      time.Time     `json:"started_at,omitempty"`
	Duration       time.Duration `json:"duration"` // 0 runs until stopped
	MinRSSI        int           `json:"min_rssi"`
	Features       Features      `json:"features"`
	LastChannelHop time.Time     `json:"last_channel_hop,omitempty"`
}

// Expired reports whether a bounded session has run past its duration.
func (s ScanState) Expired(now time.Time) bool {
	return s.Mode.Active() && s.Duration > 0 && now.Sub(s.StartedAt) > s.Duration
}

// Statistics are per-session frame counters.
type Statistics struct {
	Management        uint64 `json:"management_frames"`
	Beacons           uint64 `json:"beacons"`
	ProbeRequests     uint64 `json:"probe_requests"`
	ProbeResponses    uint64 `json:"probe_responses"`
	Data              uint64 `json:"data_frames"`
	AssociationFrames uint64 `json:"association_frames"`
	ClientPackets     uint64 `json:"client_packets"`
	HiddenRevealed    uint64 `json:"hidden_revealed"`
	Dropped           uint64 `json:"dropped"`
	Malformed         uint64 `json:"malformed"`
}

// Counts summarises registry sizes.
type Counts struct {
	AccessPoints int `json:"access_points"`
	Hidden       int `json:"hidden"`
	Revealed     int `json:"revealed"`
	Clients      int `json:"clients"`
	Associations int `json:"associations"`
	Probes       int `json:"probes"`
}

// SSIDStat aggregates sightings of one SSID across the session.
type SSIDStat struct {
	SSID              string    `json:"ssid"`
	Length            int       `json:"length"`
	BSSID             MAC       `json:"bssid"`
	Channel           int       `json:"channel"`
	RSSI              int       `json:"rssi"`
	FirstSeen         time.Time `json:"first_seen"`
	LastSeen          time.Time `json:"last_seen"`
	ProbeCount        int       `json:"probe_count"`
	Clients           []MAC     `json:"clients,omitempty"`
	Hidden            bool      `json:"hidden"`
	FromProbeRequest  bool      `json:"from_probe_request"`
	FromBeacon        bool      `json:"from_beacon"`
	FromProbeResponse bool      `json:"from_probe_response"`
}

// EventType names a notification published by the controller.
type EventType string

const (
	EventAPDiscovered EventType = "ap_discovered"
	EventAPRevealed   EventType = "ap_revealed"
	EventScanStarted  EventType = "scan_started"
	EventScanStopped  EventType = "scan_stopped"
)

// Event is a notification for collaborators (web stream, logs).
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// SessionSummary is what a finished session leaves behind.
type SessionSummary struct {
	ID        string     `json:"id"`
	Mode      ScanMode   `json:"mode"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	Counts    Counts     `json:"counts"`
	Stats     Statistics `json:"statistics"`
}

package registry

import (
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// mergeAccessPoint folds an observation into an AP record.
func mergeAccessPoint(ap *domain.AccessPoint, obs domain.Observation, wpsDetection bool) {
	if ap.PacketCount == 0 {
		ap.RSSI = obs.RSSI
	} else {
		ap.RSSI = (ap.RSSI*4 + obs.RSSI) / 5
	}
	ap.PacketCount++

	if obs.DSChannel > 0 {
		ap.Channel = obs.DSChannel
	} else if obs.Channel > 0 {
		ap.Channel = obs.Channel
	}
	if obs.Timestamp.After(ap.LastSeen) {
		ap.LastSeen = obs.Timestamp
	}

	ap.Capability = obs.Capability
	ap.Encryption = obs.Encryption
	ap.RSN = obs.RSN.Clone()
	if obs.BeaconInterval > 0 {
		ap.BeaconInterval = obs.BeaconInterval
	}
	if wpsDetection {
		ap.WPS = obs.WPS
	}

	mergeSSID(ap, obs)
}

// mergeSSID applies the SSID status of a frame. A known AP never goes back
// to hidden; a hidden AP only becomes known through a reveal, except when
// its own beacon starts naming the network.
func mergeSSID(ap *domain.AccessPoint, obs domain.Observation) {
	s := obs.SSID
	switch s.Kind {
	case domain.SSIDKnown:
		if ap.Hidden && obs.Kind != domain.KindBeacon {
			// Probe responses to a hidden AP go through Reveal.
			return
		}
		ap.SSID = append(ap.SSID[:0], s.Raw...)
		ap.DisplaySSID = s.Display()
		ap.OriginalSSIDLen = s.Length
		ap.SSIDKnown = true
		ap.Hidden = false
	case domain.SSIDHidden:
		ap.OriginalSSIDLen = s.Length
		if !ap.SSIDKnown {
			ap.Hidden = true
			ap.DisplaySSID = domain.HiddenPlaceholder
		}
	}
}

// mergeClient folds radio metadata of one frame into a client record.
// RSSI is a running mean for the first five packets, then weighted 7:3
// toward history.
func mergeClient(c *domain.Client, obs domain.Observation) {
	switch {
	case c.PacketCount == 0:
		c.RSSI = obs.RSSI
	case c.PacketCount < 5:
		c.RSSI = (c.RSSI*c.PacketCount + obs.RSSI) / (c.PacketCount + 1)
	default:
		c.RSSI = (c.RSSI*7 + obs.RSSI*3) / 10
	}
	c.PacketCount++

	if obs.Channel > 0 {
		c.Channel = obs.Channel
	}
	if obs.Timestamp.After(c.LastSeen) {
		c.LastSeen = obs.Timestamp
	}
	if obs.Kind != domain.KindUnknown {
		c.LastKind = obs.Kind
	}
	if obs.Signature != "" && obs.Sender == c.MAC {
		c.Signature = obs.Signature
	}
}

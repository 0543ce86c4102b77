package domain

import "time"

const (
	// MinRSSI and MaxRSSI bound every reported signal strength.
	MinRSSI = -100
	MaxRSSI = -30
)

// Frame is one captured 802.11 frame with radio metadata. Data starts at the
// frame control field; any radiotap header has already been stripped.
type Frame struct {
	Data      []byte
	RSSI      int // raw, as reported by the radio
	Channel   int
	Timestamp time.Time
	Interface string
}

// NormalizeRSSI reinterprets unsigned byte wraps as signed dBm and clamps
// the result to [MinRSSI, MaxRSSI].
func NormalizeRSSI(raw int) int {
	if raw > 127 && raw <= 255 {
		raw = int(int8(uint8(raw)))
	}
	if raw > MaxRSSI {
		return MaxRSSI
	}
	if raw < MinRSSI {
		return MinRSSI
	}
	return raw
}

// FrameKind is the routing-relevant classification of a frame.
type FrameKind uint8

const (
	KindUnknown FrameKind = iota
	KindBeacon
	KindProbeRequest
	KindProbeResponse
	KindAssocRequest
	KindAssocResponse
	KindReassocRequest
	KindReassocResponse
	KindDisassoc
	KindAuth
	KindDeauth
	KindOtherManagement
	KindControl
	KindData
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindBeacon:          "beacon",
	KindProbeRequest:    "probe_req",
	KindProbeResponse:   "probe_resp",
	KindAssocRequest:    "assoc_req",
	KindAssocResponse:   "assoc_resp",
	KindReassocRequest:  "reassoc_req",
	KindReassocResponse: "reassoc_resp",
	KindDisassoc:        "disassoc",
	KindAuth:            "auth",
	KindDeauth:          "deauth",
	KindOtherManagement: "mgmt",
	KindControl:         "control",
	KindData:            "data",
}

func (k FrameKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k FrameKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsManagement reports whether k is a management subtype.
func (k FrameKind) IsManagement() bool {
	return k >= KindBeacon && k <= KindOtherManagement
}

// IsAssociation covers association and reassociation requests and responses.
func (k FrameKind) IsAssociation() bool {
	return k >= KindAssocRequest && k <= KindReassocResponse
}

// IsRequest reports whether the transmitter of k is the client side.
func (k FrameKind) IsRequest() bool {
	return k == KindAssocRequest || k == KindReassocRequest || k == KindProbeRequest
}

// Observation is everything the decoder could extract from one frame.
// Fields that do not apply to the frame kind are left zero.
type Observation struct {
	Kind      FrameKind
	Receiver  MAC // addr1
	Sender    MAC // addr2
	BSSID     MAC // addr3
	ToDS      bool
	FromDS    bool
	RSSI      int // normalized
	Channel   int
	Timestamp time.Time

	SSID           SSIDStatus
	Encryption     Encryption
	RSN            *RSNDetails // nil without an RSN element
	WPS            WPSInfo
	Capability     uint16
	BeaconInterval uint16
	DSChannel      int // from the DS Parameter Set element, 0 if absent
	Signature      string
}

// Client returns the station address of a frame exchanged with an AP, if
// the direction bits or kind identify one.
func (o Observation) Client() (MAC, bool) {
	switch {
	case o.Kind == KindData && o.ToDS && !o.FromDS:
		return o.Sender, true
	case o.Kind == KindData && o.FromDS && !o.ToDS:
		return o.Receiver, true
	case o.Kind == KindAssocRequest, o.Kind == KindReassocRequest, o.Kind == KindProbeRequest:
		return o.Sender, true
	case o.Kind == KindAssocResponse, o.Kind == KindReassocResponse:
		return o.Receiver, true
	}
	return MAC{}, false
}

// AccessPoint returns the BSSID the frame was exchanged with, if any.
func (o Observation) AccessPoint() (MAC, bool) {
	switch {
	case o.Kind == KindData && o.ToDS && !o.FromDS:
		return o.Receiver, !o.Receiver.IsUndirected()
	case o.Kind == KindData && o.FromDS && !o.ToDS:
		return o.Sender, !o.Sender.IsUndirected()
	case o.Kind == KindData:
		return MAC{}, false
	}
	return o.BSSID, !o.BSSID.IsUndirected()
}

package dot11

import (
	"encoding/binary"
	"errors"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

const (
	// HeaderLen is the three-address MAC header length.
	HeaderLen = 24
	// FixedParamsLen is timestamp + beacon interval + capability.
	FixedParamsLen = 12

	// CapabilityPrivacy is the capability bit advertising WEP.
	CapabilityPrivacy uint16 = 0x0010
)

// ErrShortHeader is returned for frames shorter than a MAC header.
var ErrShortHeader = errors.New("frame shorter than 802.11 header")

// Header holds the address fields of a three-address frame.
type Header struct {
	Class Class
	Addr1 domain.MAC // receiver / destination
	Addr2 domain.MAC // transmitter / source
	Addr3 domain.MAC // BSSID for management frames
}

// ParseHeader reads the frame control and the three address fields.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderLen {
		return Header{}, ErrShortHeader
	}
	return Header{
		Class: Classify(data[:2]),
		Addr1: domain.MACFromBytes(data[4:10]),
		Addr2: domain.MACFromBytes(data[10:16]),
		Addr3: domain.MACFromBytes(data[16:22]),
	}, nil
}

// BodyOffset returns where tagged elements begin for a management subtype.
// The fixed-parameter region differs per subtype, so this is the one place
// those sizes live. It reports false for kinds that carry no elements.
func BodyOffset(kind domain.FrameKind) (int, bool) {
	switch kind {
	case domain.KindBeacon, domain.KindProbeResponse:
		return HeaderLen + FixedParamsLen, true
	case domain.KindProbeRequest:
		return HeaderLen, true
	case domain.KindAssocRequest:
		return HeaderLen + 4, true // capability, listen interval
	case domain.KindReassocRequest:
		return HeaderLen + 10, true // capability, listen interval, current AP
	case domain.KindAssocResponse, domain.KindReassocResponse:
		return HeaderLen + 6, true // capability, status, AID
	}
	return 0, false
}

// Body returns the tagged-element region of a management frame, or nil.
func Body(data []byte, kind domain.FrameKind) []byte {
	off, ok := BodyOffset(kind)
	if !ok || len(data) < off {
		return nil
	}
	return data[off:]
}

// FixedParams holds the beacon / probe response fixed fields.
type FixedParams struct {
	Timestamp      uint64
	BeaconInterval uint16
	Capability     uint16
}

// ParseFixedParams reads the little-endian fixed fields that follow the
// header of beacons and probe responses.
func ParseFixedParams(data []byte) (FixedParams, bool) {
	if len(data) < HeaderLen+FixedParamsLen {
		return FixedParams{}, false
	}
	p := data[HeaderLen:]
	return FixedParams{
		Timestamp:      binary.LittleEndian.Uint64(p[0:8]),
		BeaconInterval: binary.LittleEndian.Uint16(p[8:10]),
		Capability:     binary.LittleEndian.Uint16(p[10:12]),
	}, true
}

// Capability returns the capability field of any management subtype that
// starts its body with one (beacon, probe response, association frames).
func Capability(data []byte, kind domain.FrameKind) (uint16, bool) {
	var off int
	switch kind {
	case domain.KindBeacon, domain.KindProbeResponse:
		off = HeaderLen + 10
	case domain.KindAssocRequest, domain.KindReassocRequest,
		domain.KindAssocResponse, domain.KindReassocResponse:
		off = HeaderLen
	default:
		return 0, false
	}
	if len(data) < off+2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(data[off : off+2]), true
}

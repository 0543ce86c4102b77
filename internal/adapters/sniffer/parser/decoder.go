// Package parser turns raw 802.11 frames into domain observations.
package parser

import (
	"errors"

	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/dot11"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/ie"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// ErrShortFrame is returned for frames too short to carry the header their
// type requires.
var ErrShortFrame = errors.New("frame too short")

// controlHeaderLen covers frame control, duration and the receiver address.
const controlHeaderLen = 10

// Decoder is stateless and safe for concurrent use.
type Decoder struct{}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode extracts addresses, direction bits and, for management frames,
// the SSID, security and WPS findings of the tagged elements.
func (d *Decoder) Decode(f domain.Frame) (domain.Observation, error) {
	if len(f.Data) < 2 {
		return domain.Observation{}, ErrShortFrame
	}
	class := dot11.Classify(f.Data[:2])
	obs := domain.Observation{
		Kind:      class.Kind(),
		ToDS:      class.Flags.ToDS(),
		FromDS:    class.Flags.FromDS(),
		RSSI:      domain.NormalizeRSSI(f.RSSI),
		Channel:   f.Channel,
		Timestamp: f.Timestamp,
	}

	if class.IsControl() {
		if len(f.Data) < controlHeaderLen {
			return domain.Observation{}, ErrShortFrame
		}
		obs.Receiver = domain.MACFromBytes(f.Data[4:10])
		return obs, nil
	}

	hdr, err := dot11.ParseHeader(f.Data)
	if err != nil {
		return domain.Observation{}, ErrShortFrame
	}
	obs.Receiver = hdr.Addr1
	obs.Sender = hdr.Addr2
	obs.BSSID = hdr.Addr3

	if class.IsManagement() {
		decodeManagement(f.Data, &obs)
	}
	return obs, nil
}

func decodeManagement(data []byte, obs *domain.Observation) {
	if capability, ok := dot11.Capability(data, obs.Kind); ok {
		obs.Capability = capability
	}

	body := dot11.Body(data, obs.Kind)
	switch obs.Kind {
	case domain.KindBeacon, domain.KindProbeResponse:
		if p, ok := dot11.ParseFixedParams(data); ok {
			obs.BeaconInterval = p.BeaconInterval
		}
		obs.SSID = ie.ExtractSSID(body)
		obs.Encryption = ie.ClassifySecurity(body, obs.Capability)
		obs.RSN = ie.DescribeRSN(body)
		obs.WPS = ie.DetectWPS(body)
		if ch, ok := ie.ParseChannel(body); ok && ch > 0 {
			obs.DSChannel = ch
		}
	case domain.KindProbeRequest, domain.KindAssocRequest, domain.KindReassocRequest:
		obs.SSID = ie.ExtractSSID(body)
		obs.Signature = ie.Signature(body)
	}
}

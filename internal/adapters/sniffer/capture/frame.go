// Package capture delivers 802.11 frames from a monitor interface or a
// pcap file to the scan controller.
package capture

import (
	"errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/dot11"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// DefaultSnapLen covers the largest 802.11 frame with a radiotap header.
const DefaultSnapLen = 65536

var (
	// ErrNotMonitor is returned when a handle does not deliver 802.11 frames.
	ErrNotMonitor = errors.New("interface is not in monitor mode")
	// ErrUnsupportedLinkType is returned for captures of other link layers.
	ErrUnsupportedLinkType = errors.New("unsupported link type")
)

// supported reports whether frames of lt can be turned into domain frames.
func supported(lt layers.LinkType) bool {
	return lt == layers.LinkTypeIEEE80211Radio || lt == layers.LinkTypeIEEE802_11
}

// toFrame strips the radiotap header of packet and carries its signal and
// channel into a domain frame. A trailing FCS is removed when the radiotap
// flags announce one.
func toFrame(packet gopacket.Packet, iface string) (domain.Frame, bool) {
	f := domain.Frame{
		Interface: iface,
		Timestamp: packet.Metadata().Timestamp,
		RSSI:      domain.MinRSSI,
	}

	if rtLayer := packet.Layer(layers.LayerTypeRadioTap); rtLayer != nil {
		rt, ok := rtLayer.(*layers.RadioTap)
		if !ok {
			return domain.Frame{}, false
		}
		if rt.Present.DBMAntennaSignal() {
			f.RSSI = int(rt.DBMAntennaSignal)
		}
		if rt.Present.Channel() {
			f.Channel = dot11.FrequencyToChannel(int(rt.ChannelFrequency))
		}
		data := rt.Payload
		if rt.Present.Flags() && rt.Flags.FCS() && len(data) > 4 {
			data = data[:len(data)-4]
		}
		f.Data = data
	} else {
		f.Data = packet.Data()
	}

	if len(f.Data) < 2 {
		return domain.Frame{}, false
	}
	return f, true
}

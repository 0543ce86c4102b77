// Package sniffertest builds raw 802.11 frames for tests and the simulated
// capture source.
package sniffertest

import (
	"encoding/binary"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// FrameBuilder constructs 802.11 frames from raw bytes.
type FrameBuilder struct {
	data []byte
}

func newBuilder(fc0, flags byte, a1, a2, a3 domain.MAC) *FrameBuilder {
	h := make([]byte, 24)
	h[0] = fc0
	h[1] = flags
	copy(h[4:], a1[:])
	copy(h[10:], a2[:])
	copy(h[16:], a3[:])
	return &FrameBuilder{data: h}
}

// Beacon starts a beacon from bssid with the given capability field.
func Beacon(bssid domain.MAC, capability uint16) *FrameBuilder {
	b := newBuilder(0x80, 0, domain.BroadcastMAC, bssid, bssid)
	b.fixed(100, capability)
	return b
}

// ProbeResponse starts a probe response from bssid to client.
func ProbeResponse(bssid, client domain.MAC, capability uint16) *FrameBuilder {
	b := newBuilder(0x50, 0, client, bssid, bssid)
	b.fixed(100, capability)
	return b
}

// ProbeRequest starts a probe request from client. A broadcast target makes
// it undirected.
func ProbeRequest(client, target domain.MAC) *FrameBuilder {
	return newBuilder(0x40, 0, target, client, target)
}

// AssocRequest starts an association request from client to bssid.
func AssocRequest(client, bssid domain.MAC) *FrameBuilder {
	b := newBuilder(0x00, 0, bssid, client, bssid)
	b.data = append(b.data, 0x31, 0x04, 0x0a, 0x00) // capability, listen interval
	return b
}

// ReassocRequest starts a reassociation request from client to bssid.
func ReassocRequest(client, bssid, current domain.MAC) *FrameBuilder {
	b := newBuilder(0x20, 0, bssid, client, bssid)
	b.data = append(b.data, 0x31, 0x04, 0x0a, 0x00)
	b.data = append(b.data, current[:]...)
	return b
}

// AssocResponse starts an association response from bssid to client.
func AssocResponse(bssid, client domain.MAC) *FrameBuilder {
	b := newBuilder(0x10, 0, client, bssid, bssid)
	b.data = append(b.data, 0x31, 0x04, 0x00, 0x00, 0x01, 0xc0) // capability, status, AID
	return b
}

// Deauth starts a deauthentication frame from bssid to client.
func Deauth(bssid, client domain.MAC) *FrameBuilder {
	b := newBuilder(0xC0, 0, client, bssid, bssid)
	b.data = append(b.data, 0x07, 0x00) // reason
	return b
}

// Disassoc starts a disassociation frame from bssid to client.
func Disassoc(bssid, client domain.MAC) *FrameBuilder {
	b := newBuilder(0xA0, 0, client, bssid, bssid)
	b.data = append(b.data, 0x08, 0x00)
	return b
}

// DataToAP starts a ToDS data frame from client to bssid.
func DataToAP(client, bssid domain.MAC) *FrameBuilder {
	b := newBuilder(0x08, 0x01, bssid, client, domain.BroadcastMAC)
	b.data = append(b.data, 0xaa, 0xaa, 0x03, 0x00, 0x00, 0x00, 0x08, 0x00)
	return b
}

// DataFromAP starts a FromDS data frame from bssid to client.
func DataFromAP(bssid, client domain.MAC) *FrameBuilder {
	b := newBuilder(0x08, 0x02, client, bssid, bssid)
	b.data = append(b.data, 0xaa, 0xaa, 0x03, 0x00, 0x00, 0x00, 0x08, 0x00)
	return b
}

func (b *FrameBuilder) fixed(interval, capability uint16) {
	p := make([]byte, 12)
	binary.LittleEndian.PutUint16(p[8:10], interval)
	binary.LittleEndian.PutUint16(p[10:12], capability)
	b.data = append(b.data, p...)
}

// IE appends a tagged element. The length byte is len(data) truncated to
// a byte; use Raw for deliberately inconsistent lengths.
func (b *FrameBuilder) IE(id byte, data []byte) *FrameBuilder {
	b.data = append(b.data, id, byte(len(data)))
	b.data = append(b.data, data...)
	return b
}

// Raw appends arbitrary bytes.
func (b *FrameBuilder) Raw(p ...byte) *FrameBuilder {
	b.data = append(b.data, p...)
	return b
}

// SSID appends an SSID element.
func (b *FrameBuilder) SSID(ssid string) *FrameBuilder {
	return b.IE(0, []byte(ssid))
}

// HiddenSSID appends an SSID element of n zero bytes.
func (b *FrameBuilder) HiddenSSID(n int) *FrameBuilder {
	return b.IE(0, make([]byte, n))
}

// DSChannel appends a DS Parameter Set element.
func (b *FrameBuilder) DSChannel(ch int) *FrameBuilder {
	return b.IE(3, []byte{byte(ch)})
}

// RSN appends an RSN element with CCMP ciphers and the given AKM suite types.
func (b *FrameBuilder) RSN(akms ...byte) *FrameBuilder {
	p := []byte{
		0x01, 0x00, // version
		0x00, 0x0F, 0xAC, 0x04, // group CCMP
		0x01, 0x00, // pairwise count
		0x00, 0x0F, 0xAC, 0x04, // CCMP
		byte(len(akms)), 0x00,
	}
	for _, t := range akms {
		p = append(p, 0x00, 0x0F, 0xAC, t)
	}
	p = append(p, 0x00, 0x00) // capabilities
	return b.IE(48, p)
}

// WPA1 appends the Microsoft WPA vendor element with a PSK AKM.
func (b *FrameBuilder) WPA1() *FrameBuilder {
	return b.IE(221, []byte{
		0x00, 0x50, 0xF2, 0x01, 0x01, 0x00,
		0x00, 0x50, 0xF2, 0x02,
		0x01, 0x00, 0x00, 0x50, 0xF2, 0x02,
		0x01, 0x00, 0x00, 0x50, 0xF2, 0x02,
	})
}

// WAPI appends a WAPI vendor marker.
func (b *FrameBuilder) WAPI() *FrameBuilder {
	return b.IE(221, []byte{0x00, 0x14, 0x72, 0x01, 0x00, 0x00})
}

// WPSAttr is one WPS sub-TLV.
type WPSAttr struct {
	Type  uint16
	Value []byte
}

// WPS appends a WPS vendor element (OUI type 4) with the given attributes.
func (b *FrameBuilder) WPS(attrs ...WPSAttr) *FrameBuilder {
	return b.wps(0x04, attrs)
}

// P2P appends a vendor element with OUI type 5.
func (b *FrameBuilder) P2P(attrs ...WPSAttr) *FrameBuilder {
	return b.wps(0x05, attrs)
}

func (b *FrameBuilder) wps(subtype byte, attrs []WPSAttr) *FrameBuilder {
	p := []byte{0x00, 0x50, 0xF2, subtype}
	for _, a := range attrs {
		var hdr [4]byte
		binary.BigEndian.PutUint16(hdr[0:2], a.Type)
		binary.BigEndian.PutUint16(hdr[2:4], uint16(len(a.Value)))
		p = append(p, hdr[:]...)
		p = append(p, a.Value...)
	}
	return b.IE(221, p)
}

// End appends the 0xFF end-of-elements marker.
func (b *FrameBuilder) End() *FrameBuilder {
	return b.Raw(0xFF, 0x00)
}

// Bytes returns a copy of the frame.
func (b *FrameBuilder) Bytes() []byte {
	return append([]byte(nil), b.data...)
}

// Frame wraps the bytes with radio metadata.
func (b *FrameBuilder) Frame(rssi, channel int) domain.Frame {
	return domain.Frame{Data: b.Bytes(), RSSI: rssi, Channel: channel}
}

// Packet decodes the frame with gopacket, for cross-checking against its
// own Dot11 decoder.
func (b *FrameBuilder) Packet() gopacket.Packet {
	return gopacket.NewPacket(b.Bytes(), layers.LayerTypeDot11, gopacket.NoCopy)
}

// RadioTap prefixes the frame with a minimal radiotap header carrying the
// channel frequency and antenna signal.
func (b *FrameBuilder) RadioTap(freq uint16, signal int8) []byte {
	// present: channel (bit 3) | dbm antenna signal (bit 5)
	hdr := []byte{
		0x00, 0x00, // version, pad
		0x0d, 0x00, // length 13
		0x28, 0x00, 0x00, 0x00, // present
		0x00, 0x00, // channel frequency
		0xa0, 0x00, // channel flags: 2 GHz CCK
		byte(signal),
	}
	binary.LittleEndian.PutUint16(hdr[8:10], freq)
	return append(hdr, b.data...)
}

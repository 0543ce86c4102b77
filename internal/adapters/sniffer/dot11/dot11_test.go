package dot11_test

import (
	"testing"

	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/dot11"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/sniffertest"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	apMAC     = domain.MustParseMAC("AA:BB:CC:11:22:33")
	clientMAC = domain.MustParseMAC("00:11:22:33:44:55")
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		fc      []byte
		typ     layers.Dot11Type
		subtype uint8
		kind    domain.FrameKind
	}{
		{"beacon", []byte{0x80, 0x00}, layers.Dot11TypeMgmt, 8, domain.KindBeacon},
		{"probe request", []byte{0x40, 0x00}, layers.Dot11TypeMgmt, 4, domain.KindProbeRequest},
		{"probe response", []byte{0x50, 0x00}, layers.Dot11TypeMgmt, 5, domain.KindProbeResponse},
		{"assoc request", []byte{0x00, 0x00}, layers.Dot11TypeMgmt, 0, domain.KindAssocRequest},
		{"assoc response", []byte{0x10, 0x00}, layers.Dot11TypeMgmt, 1, domain.KindAssocResponse},
		{"reassoc request", []byte{0x20, 0x00}, layers.Dot11TypeMgmt, 2, domain.KindReassocRequest},
		{"reassoc response", []byte{0x30, 0x00}, layers.Dot11TypeMgmt, 3, domain.KindReassocResponse},
		{"disassoc", []byte{0xA0, 0x00}, layers.Dot11TypeMgmt, 0xA, domain.KindDisassoc},
		{"auth", []byte{0xB0, 0x00}, layers.Dot11TypeMgmt, 0xB, domain.KindAuth},
		{"deauth", []byte{0xC0, 0x00}, layers.Dot11TypeMgmt, 0xC, domain.KindDeauth},
		{"action", []byte{0xD0, 0x00}, layers.Dot11TypeMgmt, 0xD, domain.KindOtherManagement},
		{"rts", []byte{0xB4, 0x00}, layers.Dot11TypeCtrl, 0xB, domain.KindControl},
		{"data", []byte{0x08, 0x01}, layers.Dot11TypeData, 0, domain.KindData},
		{"qos data", []byte{0x88, 0x02}, layers.Dot11TypeData, 8, domain.KindData},
		{"reserved type", []byte{0x0C, 0x00}, layers.Dot11Type(3), 0, domain.KindUnknown},
		{"empty input", nil, layers.Dot11TypeMgmt, 0, domain.KindAssocRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := dot11.Classify(tt.fc)
			assert.Equal(t, tt.typ, c.Type)
			assert.Equal(t, tt.subtype, c.Subtype)
			assert.Equal(t, tt.kind, c.Kind())
		})
	}
}

func TestClassifyAgreesWithGopacket(t *testing.T) {
	frames := [][]byte{
		sniffertest.Beacon(apMAC, 0x0011).SSID("x").Bytes(),
		sniffertest.ProbeRequest(clientMAC, domain.BroadcastMAC).SSID("").Bytes(),
		sniffertest.AssocRequest(clientMAC, apMAC).SSID("x").Bytes(),
		sniffertest.Deauth(apMAC, clientMAC).Bytes(),
		sniffertest.DataToAP(clientMAC, apMAC).Bytes(),
	}
	for _, f := range frames {
		pkt := gopacketDot11(t, f)
		c := dot11.Classify(f)
		assert.Equal(t, pkt.Type, c.Dot11Type())
		assert.Equal(t, pkt.Flags, c.Flags)
	}
}

func gopacketDot11(t *testing.T, data []byte) *layers.Dot11 {
	t.Helper()
	var d layers.Dot11
	require.NoError(t, d.DecodeFromBytes(data, nopFeedback{}))
	return &d
}

type nopFeedback struct{}

func (nopFeedback) SetTruncated() {}

func TestPredicates(t *testing.T) {
	assert.True(t, dot11.Classify([]byte{0x80, 0}).IsBeacon())
	assert.True(t, dot11.Classify([]byte{0x40, 0}).IsProbeRequest())
	assert.True(t, dot11.Classify([]byte{0x50, 0}).IsProbeResponse())
	assert.True(t, dot11.Classify([]byte{0x30, 0}).IsAssociation())
	assert.True(t, dot11.Classify([]byte{0xA0, 0}).IsDeauth())
	assert.True(t, dot11.Classify([]byte{0xC0, 0}).IsDeauth())
	assert.True(t, dot11.Classify([]byte{0x08, 0}).IsData())
	assert.False(t, dot11.Classify([]byte{0x08, 0}).IsManagement())
	assert.True(t, dot11.Classify([]byte{0x08, 0x01}).Flags.ToDS())
}

func TestParseHeader(t *testing.T) {
	frame := sniffertest.AssocRequest(clientMAC, apMAC).SSID("HomeNet").Bytes()
	h, err := dot11.ParseHeader(frame)
	require.NoError(t, err)
	assert.Equal(t, apMAC, h.Addr1)
	assert.Equal(t, clientMAC, h.Addr2)
	assert.Equal(t, apMAC, h.Addr3)

	_, err = dot11.ParseHeader(frame[:23])
	assert.ErrorIs(t, err, dot11.ErrShortHeader)
}

func TestBodyOffsets(t *testing.T) {
	tests := []struct {
		kind domain.FrameKind
		want int
	}{
		{domain.KindBeacon, 36},
		{domain.KindProbeResponse, 36},
		{domain.KindProbeRequest, 24},
		{domain.KindAssocRequest, 28},
		{domain.KindReassocRequest, 34},
		{domain.KindAssocResponse, 30},
		{domain.KindReassocResponse, 30},
	}
	for _, tt := range tests {
		off, ok := dot11.BodyOffset(tt.kind)
		assert.True(t, ok, tt.kind.String())
		assert.Equal(t, tt.want, off, tt.kind.String())
	}
	_, ok := dot11.BodyOffset(domain.KindData)
	assert.False(t, ok)

	assert.Nil(t, dot11.Body(make([]byte, 30), domain.KindBeacon))
	probe := sniffertest.ProbeRequest(clientMAC, domain.BroadcastMAC).SSID("a").Bytes()
	assert.Equal(t, []byte{0x00, 0x01, 'a'}, dot11.Body(probe, domain.KindProbeRequest))
}

func TestFixedParams(t *testing.T) {
	frame := sniffertest.Beacon(apMAC, 0x0431).Bytes()
	p, ok := dot11.ParseFixedParams(frame)
	require.True(t, ok)
	assert.Equal(t, uint16(100), p.BeaconInterval)
	assert.Equal(t, uint16(0x0431), p.Capability)

	c, ok := dot11.Capability(frame, domain.KindBeacon)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0431), c)

	_, ok = dot11.ParseFixedParams(frame[:30])
	assert.False(t, ok)
}

func TestFrequencyToChannel(t *testing.T) {
	assert.Equal(t, 1, dot11.FrequencyToChannel(2412))
	assert.Equal(t, 6, dot11.FrequencyToChannel(2437))
	assert.Equal(t, 14, dot11.FrequencyToChannel(2484))
	assert.Equal(t, 36, dot11.FrequencyToChannel(5180))
	assert.Equal(t, 0, dot11.FrequencyToChannel(900))
	for ch := 1; ch <= 14; ch++ {
		assert.Equal(t, ch, dot11.FrequencyToChannel(dot11.ChannelToFrequency(ch)))
	}
}

package parser_test

import (
	"testing"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/ie"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/parser"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/sniffertest"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	apMAC     = domain.MustParseMAC("AA:BB:CC:11:22:33")
	clientMAC = domain.MustParseMAC("00:11:22:33:44:55")
)

func TestDecodeBeacon(t *testing.T) {
	now := time.Now()
	f := sniffertest.Beacon(apMAC, 0x0411).
		SSID("HomeNet").
		DSChannel(6).
		RSN(ie.AKMPSK).
		WPS(sniffertest.WPSAttr{Type: 0x104A, Value: []byte{0x10}}).
		Frame(-55, 1)
	f.Timestamp = now

	obs, err := parser.NewDecoder().Decode(f)
	require.NoError(t, err)

	assert.Equal(t, domain.KindBeacon, obs.Kind)
	assert.Equal(t, apMAC, obs.Sender)
	assert.Equal(t, apMAC, obs.BSSID)
	assert.Equal(t, domain.BroadcastMAC, obs.Receiver)
	assert.Equal(t, -55, obs.RSSI)
	assert.Equal(t, 1, obs.Channel)
	assert.Equal(t, 6, obs.DSChannel)
	assert.Equal(t, now, obs.Timestamp)
	assert.Equal(t, uint16(0x0411), obs.Capability)
	assert.Equal(t, uint16(100), obs.BeaconInterval)
	assert.Equal(t, "HomeNet", obs.SSID.Display())
	assert.Equal(t, domain.EncryptionWPA2, obs.Encryption)
	require.NotNil(t, obs.RSN)
	assert.Equal(t, "CCMP", obs.RSN.GroupCipher)
	assert.Equal(t, []string{"PSK"}, obs.RSN.AKMs)
	assert.True(t, obs.WPS.Enabled)
	assert.Equal(t, 1, obs.WPS.Version)

	bssid, ok := obs.AccessPoint()
	assert.True(t, ok)
	assert.Equal(t, apMAC, bssid)
}

func TestDecodeHiddenBeacon(t *testing.T) {
	obs, err := parser.NewDecoder().Decode(sniffertest.Beacon(apMAC, 0x0011).HiddenSSID(7).Frame(-60, 3))
	require.NoError(t, err)
	assert.True(t, obs.SSID.IsHidden())
	assert.Equal(t, 7, obs.SSID.Length)
	assert.Equal(t, domain.EncryptionWEP, obs.Encryption)
	assert.Nil(t, obs.RSN, "no RSN element")
}

func TestDecodeProbeRequest(t *testing.T) {
	obs, err := parser.NewDecoder().Decode(
		sniffertest.ProbeRequest(clientMAC, domain.BroadcastMAC).SSID("HomeNet").Frame(-70, 6))
	require.NoError(t, err)

	assert.Equal(t, domain.KindProbeRequest, obs.Kind)
	assert.Equal(t, "HomeNet", obs.SSID.Display())
	assert.Equal(t, domain.EncryptionOpen, obs.Encryption)

	client, ok := obs.Client()
	assert.True(t, ok)
	assert.Equal(t, clientMAC, client)
	_, ok = obs.AccessPoint()
	assert.False(t, ok, "undirected probe names no AP")
}

func TestDecodeAssociationFrames(t *testing.T) {
	dec := parser.NewDecoder()

	req, err := dec.Decode(sniffertest.AssocRequest(clientMAC, apMAC).SSID("HomeNet").Frame(-50, 6))
	require.NoError(t, err)
	assert.Equal(t, domain.KindAssocRequest, req.Kind)
	assert.Equal(t, "HomeNet", req.SSID.Display())
	c, _ := req.Client()
	assert.Equal(t, clientMAC, c)

	reassoc, err := dec.Decode(sniffertest.ReassocRequest(clientMAC, apMAC, apMAC).SSID("HomeNet").Frame(-50, 6))
	require.NoError(t, err)
	assert.Equal(t, "HomeNet", reassoc.SSID.Display())

	resp, err := dec.Decode(sniffertest.AssocResponse(apMAC, clientMAC).Frame(-50, 6))
	require.NoError(t, err)
	c, _ = resp.Client()
	assert.Equal(t, clientMAC, c)
	assert.True(t, resp.SSID.IsAbsent())
}

func TestDecodeDataDirection(t *testing.T) {
	dec := parser.NewDecoder()

	up, err := dec.Decode(sniffertest.DataToAP(clientMAC, apMAC).Frame(-40, 6))
	require.NoError(t, err)
	assert.True(t, up.ToDS)
	assert.False(t, up.FromDS)
	c, _ := up.Client()
	a, _ := up.AccessPoint()
	assert.Equal(t, clientMAC, c)
	assert.Equal(t, apMAC, a)

	down, err := dec.Decode(sniffertest.DataFromAP(apMAC, clientMAC).Frame(-40, 6))
	require.NoError(t, err)
	assert.True(t, down.FromDS)
	c, _ = down.Client()
	a, _ = down.AccessPoint()
	assert.Equal(t, clientMAC, c)
	assert.Equal(t, apMAC, a)
}

func TestDecodeNormalizesRSSI(t *testing.T) {
	obs, err := parser.NewDecoder().Decode(sniffertest.Beacon(apMAC, 0).SSID("x").Frame(200, 1))
	require.NoError(t, err)
	assert.Equal(t, -56, obs.RSSI)
}

func TestDecodeShortFrames(t *testing.T) {
	dec := parser.NewDecoder()
	beacon := sniffertest.Beacon(apMAC, 0).SSID("x").Bytes()

	for _, n := range []int{0, 1, 10, 23} {
		_, err := dec.Decode(domain.Frame{Data: beacon[:n]})
		assert.ErrorIs(t, err, parser.ErrShortFrame, "len %d", n)
	}

	// Header intact but fixed parameters cut: no error, nothing extracted.
	obs, err := dec.Decode(domain.Frame{Data: beacon[:30]})
	require.NoError(t, err)
	assert.True(t, obs.SSID.IsAbsent())
	assert.Zero(t, obs.Capability)
}

func TestDecodeControlFrame(t *testing.T) {
	rts := []byte{0xB4, 0x00, 0, 0, 0xAA, 0xBB, 0xCC, 0x11, 0x22, 0x33, 0, 0x11, 0x22, 0x33, 0x44, 0x55}
	obs, err := parser.NewDecoder().Decode(domain.Frame{Data: rts})
	require.NoError(t, err)
	assert.Equal(t, domain.KindControl, obs.Kind)
	assert.Equal(t, apMAC, obs.Receiver)
}

func TestDecodeProbeSignature(t *testing.T) {
	dec := parser.NewDecoder()
	probe := func(ssid string) domain.Observation {
		obs, err := dec.Decode(sniffertest.ProbeRequest(clientMAC, domain.BroadcastMAC).
			SSID(ssid).IE(1, []byte{0x82, 0x84, 0x8b, 0x96}).IE(45, []byte{0x2c, 0x01}).Frame(-60, 1))
		require.NoError(t, err)
		return obs
	}

	a, b := probe("HomeNet"), probe("Office")
	assert.NotEmpty(t, a.Signature)
	assert.Equal(t, a.Signature, b.Signature)

	bare, err := dec.Decode(sniffertest.ProbeRequest(clientMAC, domain.BroadcastMAC).SSID("HomeNet").Frame(-60, 1))
	require.NoError(t, err)
	assert.Empty(t, bare.Signature)
}

package registry

import (
	"fmt"
	"testing"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSIDManager_Update(t *testing.T) {
	m := NewSSIDManager(10)
	home := domain.KnownSSID([]byte("HomeNet"))
	ap := macN(0xA0, 1)

	m.Update(home, FromProbeRequest, macN(0x10, 1), domain.BroadcastMAC, -60, 1, t0)
	m.Update(home, FromProbeRequest, macN(0x10, 2), domain.BroadcastMAC, -60, 1, t0.Add(time.Second))
	m.Update(home, FromProbeRequest, macN(0x10, 1), domain.BroadcastMAC, -60, 1, t0.Add(2*time.Second))
	m.Update(home, FromBeacon, ap, ap, -40, 6, t0.Add(3*time.Second))
	m.Update(domain.AbsentSSID(), FromBeacon, ap, ap, -40, 6, t0)

	stats := m.Snapshot()
	require.Len(t, stats, 1)
	st := stats[0]
	assert.Equal(t, "HomeNet", st.SSID)
	assert.Equal(t, 3, st.ProbeCount)
	assert.Equal(t, []domain.MAC{macN(0x10, 1), macN(0x10, 2)}, st.Clients)
	assert.True(t, st.FromProbeRequest)
	assert.True(t, st.FromBeacon)
	assert.False(t, st.FromProbeResponse)
	assert.Equal(t, ap, st.BSSID)
	assert.Equal(t, 6, st.Channel)
	assert.Equal(t, t0, st.FirstSeen)
	assert.Equal(t, t0.Add(3*time.Second), st.LastSeen)
}

func TestSSIDManager_HiddenIsSeparate(t *testing.T) {
	m := NewSSIDManager(10)
	m.Update(domain.HiddenSSID(0), FromProbeRequest, macN(0x10, 1), domain.BroadcastMAC, -60, 1, t0)
	m.Update(domain.HiddenSSID(5), FromBeacon, macN(0xA0, 1), macN(0xA0, 1), -60, 1, t0)
	m.Update(domain.KnownSSID([]byte("x")), FromBeacon, macN(0xA0, 2), macN(0xA0, 2), -60, 1, t0)
	assert.Equal(t, 3, m.Len())
}

func TestSSIDManager_EvictsOldest(t *testing.T) {
	m := NewSSIDManager(DefaultMaxSSIDStats)
	for i := 0; i <= DefaultMaxSSIDStats; i++ {
		ssid := domain.KnownSSID([]byte(fmt.Sprintf("ssid-%03d", i)))
		m.Update(ssid, FromProbeRequest, macN(0x10, 1), domain.BroadcastMAC, -60, 1, t0.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, DefaultMaxSSIDStats, m.Len())
	for _, st := range m.Snapshot() {
		assert.NotEqual(t, "ssid-000", st.SSID)
	}

	m.Clear()
	assert.Zero(t, m.Len())
}

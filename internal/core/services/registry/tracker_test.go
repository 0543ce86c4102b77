package registry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVendorLookup struct {
	mock.Mock
}

func (m *MockVendorLookup) LookupVendor(ctx context.Context, mac domain.MAC) (string, error) {
	args := m.Called(ctx, mac)
	return args.String(0), args.Error(1)
}

func newTracker(aps, clients, assoc int) *Tracker {
	return NewTracker(NewAPRegistry(aps), NewClientRegistry(clients, nil), NewAssociationIndex(assoc))
}

func obsAt(rssi int, at time.Time) domain.Observation {
	return domain.Observation{Kind: domain.KindData, RSSI: rssi, Channel: 1, Timestamp: at}
}

// assertConsistent checks that the AP sets, Client.APBSSID and the index
// describe the same relation.
func assertConsistent(t *testing.T, tr *Tracker) {
	t.Helper()
	for _, ap := range tr.APs.aps {
		assert.LessOrEqual(t, len(ap.AssociatedClients), domain.MaxAssociatedClients)
		for _, c := range ap.AssociatedClients {
			a, ok := tr.Index.Get(c)
			if assert.True(t, ok, "AP %s lists %s without index entry", ap.BSSID, c) {
				assert.Equal(t, ap.BSSID, a.BSSID)
			}
		}
	}
	for mac, a := range tr.Index.entries {
		if ap, ok := tr.APs.Get(a.BSSID); ok {
			assert.True(t, ap.HasClient(mac), "index links %s to %s but AP set lacks it", mac, a.BSSID)
		}
		if c, ok := tr.Clients.Get(mac); ok {
			if assert.NotNil(t, c.APBSSID) {
				assert.Equal(t, a.BSSID, *c.APBSSID)
			}
		}
	}
	for mac, c := range tr.Clients.clients {
		if c.APBSSID != nil {
			_, ok := tr.Index.Get(mac)
			assert.True(t, ok, "client %s has APBSSID without index entry", mac)
		}
	}
	assert.LessOrEqual(t, tr.Index.Len(), tr.Index.capacity)
}

func TestClientRegistry_Smoothing(t *testing.T) {
	r := NewClientRegistry(10, nil)
	c, _, _ := r.FindOrCreate(context.Background(), macN(2, 1), t0)

	for i, rssi := range []int{-40, -60, -50, -50, -50} {
		r.Update(c, obsAt(rssi, t0))
		if i == 1 {
			assert.Equal(t, -50, c.RSSI, "mean of the first two")
		}
	}
	assert.Equal(t, 5, c.PacketCount)
	assert.Equal(t, -50, c.RSSI)

	r.Update(c, obsAt(-80, t0))
	assert.Equal(t, -59, c.RSSI, "7:3 once steady")
	assert.Equal(t, domain.KindData, c.LastKind)
}

func TestClientRegistry_VendorLookup(t *testing.T) {
	vendors := new(MockVendorLookup)
	apple := domain.MustParseMAC("00:03:93:00:00:01")
	unknown := domain.MustParseMAC("02:00:00:00:00:01")
	vendors.On("LookupVendor", mock.Anything, apple).Return("Apple", nil)
	vendors.On("LookupVendor", mock.Anything, unknown).Return("", errors.New("not found"))

	r := NewClientRegistry(10, vendors)
	c, _, _ := r.FindOrCreate(context.Background(), apple, t0)
	assert.Equal(t, "Apple", c.Manufacturer)
	c, _, _ = r.FindOrCreate(context.Background(), unknown, t0)
	assert.Empty(t, c.Manufacturer)

	r.FindOrCreate(context.Background(), apple, t0)
	vendors.AssertNumberOfCalls(t, "LookupVendor", 2)
}

func TestClientRegistry_SSIDHistory(t *testing.T) {
	r := NewClientRegistry(10, nil)
	c, _, _ := r.FindOrCreate(context.Background(), macN(2, 1), t0)

	for i := 0; i < domain.MaxSSIDHistory+1; i++ {
		ssid := domain.KnownSSID([]byte(fmt.Sprintf("net-%02d", i)))
		r.RecordProbe(c, ssid, domain.BroadcastMAC, t0.Add(time.Duration(i)*time.Second))
	}
	require.Len(t, c.SSIDHistory, domain.MaxSSIDHistory)
	assert.Equal(t, "net-01", c.SSIDHistory[0].SSID.Display(), "least recently seen dropped")
	assert.Equal(t, domain.MaxSSIDHistory+1, c.ProbeCount)
	assert.True(t, c.ProbingActive)
	assert.Equal(t, "net-20", c.LastProbedSSID.Display())

	r.RecordProbe(c, domain.KnownSSID([]byte("net-05")), domain.BroadcastMAC, t0.Add(time.Minute))
	for _, h := range c.SSIDHistory {
		if h.SSID.Display() == "net-05" {
			assert.Equal(t, 2, h.ProbeCount)
			assert.Equal(t, t0.Add(time.Minute), h.LastSeen)
		}
	}

	r.ExpireProbing(t0.Add(2 * time.Minute))
	assert.False(t, c.ProbingActive)
}

func TestClientRegistry_ProbedAPs(t *testing.T) {
	r := NewClientRegistry(10, nil)
	c, _, _ := r.FindOrCreate(context.Background(), macN(2, 1), t0)

	r.RecordProbe(c, domain.KnownSSID([]byte("x")), domain.BroadcastMAC, t0)
	assert.Empty(t, c.ProbedAPs, "undirected probes name no AP")

	for i := 0; i < domain.MaxProbedAPs+2; i++ {
		r.RecordProbe(c, domain.KnownSSID([]byte("x")), macN(0xA0, i), t0)
	}
	r.RecordProbe(c, domain.KnownSSID([]byte("x")), macN(0xA0, 5), t0)
	require.Len(t, c.ProbedAPs, domain.MaxProbedAPs)
	assert.Equal(t, macN(0xA0, 2), c.ProbedAPs[0])
}

func TestTracker_LinkMovesClient(t *testing.T) {
	tr := newTracker(10, 10, 10)
	x, _ := tr.AccessPoint(macN(0xA0, 1), t0)
	y, _ := tr.AccessPoint(macN(0xA0, 2), t0)
	c, _ := tr.Client(context.Background(), macN(0x10, 1), t0)

	require.True(t, tr.Link(c.MAC, x.BSSID, t0))
	assert.True(t, x.HasClient(c.MAC))
	assert.Equal(t, x.BSSID, *c.APBSSID)

	require.True(t, tr.Link(c.MAC, x.BSSID, t0.Add(time.Second)))
	a, _ := tr.Index.Get(c.MAC)
	assert.Equal(t, 2, a.AssociationCount)
	assert.Len(t, x.AssociatedClients, 1)

	require.True(t, tr.Link(c.MAC, y.BSSID, t0.Add(2*time.Second)))
	assert.False(t, x.HasClient(c.MAC))
	assert.True(t, y.HasClient(c.MAC))
	assert.Equal(t, y.BSSID, *c.APBSSID)
	a, _ = tr.Index.Get(c.MAC)
	assert.Equal(t, y.BSSID, a.BSSID)
	assert.Equal(t, 1, a.AssociationCount)
	assertConsistent(t, tr)
}

func TestTracker_ConfirmDoesNotRecount(t *testing.T) {
	tr := newTracker(10, 10, 10)
	x, _ := tr.AccessPoint(macN(0xA0, 1), t0)
	c, _ := tr.Client(context.Background(), macN(0x10, 1), t0)

	require.True(t, tr.Confirm(c.MAC, x.BSSID, t0))
	require.True(t, tr.Confirm(c.MAC, x.BSSID, t0.Add(time.Second)))
	require.True(t, tr.Confirm(c.MAC, x.BSSID, t0.Add(2*time.Second)))

	a, ok := tr.Index.Get(c.MAC)
	require.True(t, ok)
	assert.Equal(t, 1, a.AssociationCount)
	assert.Equal(t, t0, a.FirstAssociated)
	assert.Equal(t, t0.Add(2*time.Second), a.LastAssociated)
	assert.True(t, x.HasClient(c.MAC))
	assertConsistent(t, tr)
}

func TestTracker_LinkRejects(t *testing.T) {
	tr := newTracker(10, 10, 10)
	assert.False(t, tr.Link(macN(0x10, 1), macN(0xA0, 1), t0), "unknown client")

	c, _ := tr.Client(context.Background(), macN(0x10, 1), t0)
	assert.False(t, tr.Link(c.MAC, domain.BroadcastMAC, t0))
	assert.False(t, tr.Link(c.MAC, domain.ZeroMAC, t0))
	assert.Nil(t, c.APBSSID)
}

func TestTracker_UnlinkKeepsClient(t *testing.T) {
	tr := newTracker(10, 10, 10)
	ap, _ := tr.AccessPoint(macN(0xA0, 1), t0)
	c, _ := tr.Client(context.Background(), macN(0x10, 1), t0)
	tr.Link(c.MAC, ap.BSSID, t0)

	assert.False(t, tr.Unlink(c.MAC, macN(0xA0, 9)), "different AP")
	assert.True(t, tr.Unlink(c.MAC, ap.BSSID))
	assert.False(t, ap.HasClient(c.MAC))
	assert.Nil(t, c.APBSSID)
	_, ok := tr.Clients.Get(c.MAC)
	assert.True(t, ok, "client record survives deauthentication")
	assert.False(t, tr.Unlink(c.MAC, ap.BSSID))
	assertConsistent(t, tr)
}

func TestTracker_UnlinkAll(t *testing.T) {
	tr := newTracker(10, 10, 10)
	ap, _ := tr.AccessPoint(macN(0xA0, 1), t0)
	for i := 0; i < 3; i++ {
		c, _ := tr.Client(context.Background(), macN(0x10, i), t0)
		tr.Link(c.MAC, ap.BSSID, t0)
	}
	assert.Equal(t, 3, tr.UnlinkAll(ap.BSSID))
	assert.Empty(t, ap.AssociatedClients)
	assert.Zero(t, tr.Index.Len())
}

func TestTracker_APSetFIFO(t *testing.T) {
	tr := newTracker(10, 50, 50)
	ap, _ := tr.AccessPoint(macN(0xA0, 1), t0)
	for i := 0; i <= domain.MaxAssociatedClients; i++ {
		c, _ := tr.Client(context.Background(), macN(0x10, i), t0)
		tr.Link(c.MAC, ap.BSSID, t0.Add(time.Duration(i)*time.Second))
	}

	assert.Len(t, ap.AssociatedClients, domain.MaxAssociatedClients)
	first, _ := tr.Clients.Get(macN(0x10, 0))
	assert.False(t, ap.HasClient(first.MAC))
	assert.Nil(t, first.APBSSID)
	_, ok := tr.Index.Get(first.MAC)
	assert.False(t, ok)
	assertConsistent(t, tr)
}

func TestTracker_APEvictionUnlinksClients(t *testing.T) {
	tr := newTracker(1, 10, 10)
	ap, _ := tr.AccessPoint(macN(0xA0, 1), t0)
	c, _ := tr.Client(context.Background(), macN(0x10, 1), t0)
	tr.Link(c.MAC, ap.BSSID, t0)

	tr.AccessPoint(macN(0xA0, 2), t0.Add(time.Second))
	assert.Nil(t, c.APBSSID)
	assert.Zero(t, tr.Index.Len())
	assertConsistent(t, tr)
}

func TestTracker_ClientEvictionLeavesAPSet(t *testing.T) {
	tr := newTracker(10, 1, 10)
	ap, _ := tr.AccessPoint(macN(0xA0, 1), t0)
	c, _ := tr.Client(context.Background(), macN(0x10, 1), t0)
	tr.Link(c.MAC, ap.BSSID, t0)

	tr.Client(context.Background(), macN(0x10, 2), t0.Add(time.Second))
	assert.False(t, ap.HasClient(c.MAC))
	assert.Zero(t, tr.Index.Len())
	assertConsistent(t, tr)
}

func TestTracker_BackfillsLateAP(t *testing.T) {
	tr := newTracker(10, 10, 10)
	bssid := macN(0xA0, 1)
	c, _ := tr.Client(context.Background(), macN(0x10, 1), t0)
	require.True(t, tr.Link(c.MAC, bssid, t0))
	assert.Equal(t, bssid, *c.APBSSID)

	ap, created := tr.AccessPoint(bssid, t0.Add(time.Second))
	assert.True(t, created)
	assert.Equal(t, []domain.MAC{c.MAC}, ap.AssociatedClients)
	assertConsistent(t, tr)
}

func TestTracker_IndexCapacity(t *testing.T) {
	tr := newTracker(10, 10, 2)
	ap, _ := tr.AccessPoint(macN(0xA0, 1), t0)
	for i := 0; i < 3; i++ {
		c, _ := tr.Client(context.Background(), macN(0x10, i), t0)
		tr.Link(c.MAC, ap.BSSID, t0.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, 2, tr.Index.Len())
	assert.False(t, ap.HasClient(macN(0x10, 0)))
	assertConsistent(t, tr)
}

func TestTracker_RemoveStale(t *testing.T) {
	tr := newTracker(10, 10, 10)
	ap, _ := tr.AccessPoint(macN(0xA0, 1), t0)
	old, _ := tr.Client(context.Background(), macN(0x10, 1), t0)
	fresh, _ := tr.Client(context.Background(), macN(0x10, 2), t0)
	tr.Clients.Update(fresh, obsAt(-50, t0.Add(40*time.Second)))
	tr.Link(old.MAC, ap.BSSID, t0)
	tr.Link(fresh.MAC, ap.BSSID, t0)

	clients, assocs := tr.RemoveStale(t0.Add(35 * time.Second))
	assert.Equal(t, 1, clients)
	assert.Equal(t, 1, assocs, "fresh client's association was not refreshed")
	_, ok := tr.Clients.Get(old.MAC)
	assert.False(t, ok)
	_, ok = tr.Clients.Get(fresh.MAC)
	assert.True(t, ok)
	assert.Nil(t, fresh.APBSSID)
	assert.Empty(t, ap.AssociatedClients)
	assertConsistent(t, tr)
}

func TestTracker_RandomOperationsStayConsistent(t *testing.T) {
	tr := newTracker(4, 8, 6)
	rng := rand.New(rand.NewSource(11))
	ctx := context.Background()
	now := t0

	for i := 0; i < 3000; i++ {
		now = now.Add(time.Duration(rng.Intn(500)) * time.Millisecond)
		bssid := macN(0xA0, rng.Intn(6))
		client := macN(0x10, rng.Intn(12))

		switch rng.Intn(7) {
		case 0:
			tr.AccessPoint(bssid, now)
		case 1:
			tr.Client(ctx, client, now)
		case 2, 3:
			tr.Link(client, bssid, now)
		case 4:
			tr.Unlink(client, bssid)
		case 5:
			tr.RemoveClient(client)
		case 6:
			tr.RemoveStale(now.Add(-3 * time.Second))
		}
		assertConsistent(t, tr)
		if t.Failed() {
			t.Fatalf("inconsistent after step %d", i)
		}
	}
}

func TestClientRegistry_SignatureFromOwnFrames(t *testing.T) {
	r := NewClientRegistry(10, nil)
	mac := macN(2, 7)
	c, _, _ := r.FindOrCreate(context.Background(), mac, t0)

	r.Update(c, domain.Observation{Kind: domain.KindProbeRequest, Sender: mac, Signature: "abc", Timestamp: t0})
	assert.Equal(t, "abc", c.Signature)

	r.Update(c, domain.Observation{Kind: domain.KindAssocResponse, Receiver: mac, Sender: macN(1, 1), Signature: "other", Timestamp: t0})
	assert.Equal(t, "abc", c.Signature, "frames sent to the client do not describe it")

	r.Update(c, domain.Observation{Kind: domain.KindData, Sender: mac, Timestamp: t0})
	assert.Equal(t, "abc", c.Signature)
}

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seen = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupDB creates a SQLiteAdapter backed by a file in a temp dir.
func setupDB(t *testing.T) *SQLiteAdapter {
	t.Helper()
	adapter, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "wreveal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func revealedAP() domain.AccessPoint {
	return domain.AccessPoint{
		BSSID:           domain.MustParseMAC("00:11:22:33:44:55"),
		DisplaySSID:     "HomeNet",
		SSID:            []byte("HomeNet"),
		OriginalSSIDLen: 7,
		SSIDKnown:       true,
		SSIDRevealed:    true,
		RevealedAt:      seen.Add(time.Minute),
		RevealSource:    domain.RevealAssociation,
		RSSI:            -55,
		Channel:         6,
		Encryption:      domain.EncryptionWPA2WPA3,
		RSN: &domain.RSNDetails{
			GroupCipher:     "CCMP",
			PairwiseCiphers: []string{"CCMP", "GCMP-256"},
			AKMs:            []string{"PSK", "SAE"},
			MFPCapable:      true,
		},
		WPS:         domain.WPSInfo{Enabled: true, Version: 2, State: "configured", Model: "RT-AX58U"},
		VendorOUI:   "00:11:22",
		FirstSeen:   seen,
		LastSeen:    seen.Add(2 * time.Minute),
		PacketCount: 42,
		AssociatedClients: []domain.MAC{
			domain.MustParseMAC("00:aa:bb:cc:dd:01"),
		},
	}
}

func TestSaveAndLoadAccessPoints(t *testing.T) {
	adapter := setupDB(t)
	ctx := context.Background()

	hidden := domain.AccessPoint{
		BSSID:           domain.MustParseMAC("00:11:22:33:44:66"),
		DisplaySSID:     domain.HiddenPlaceholder,
		OriginalSSIDLen: 5,
		Hidden:          true,
		Encryption:      domain.EncryptionWPA2Enterprise,
		FirstSeen:       seen,
		LastSeen:        seen,
	}
	require.NoError(t, adapter.SaveAccessPoints(ctx, "session-1", []domain.AccessPoint{revealedAP(), hidden}))

	aps, err := adapter.LoadAccessPoints(ctx)
	require.NoError(t, err)
	require.Len(t, aps, 2)

	got := aps[0]
	want := revealedAP()
	assert.Equal(t, want.BSSID, got.BSSID, "most recently seen first")
	assert.Equal(t, want.SSID, got.SSID)
	assert.Equal(t, want.DisplaySSID, got.DisplaySSID)
	assert.True(t, got.SSIDRevealed)
	assert.Equal(t, domain.RevealAssociation, got.RevealSource)
	assert.True(t, want.RevealedAt.Equal(got.RevealedAt))
	assert.Equal(t, domain.EncryptionWPA2WPA3, got.Encryption)
	assert.Equal(t, want.RSN, got.RSN)
	assert.Equal(t, want.WPS, got.WPS)
	assert.Equal(t, 42, got.PacketCount)
	assert.Empty(t, got.AssociatedClients, "clients are not persisted")

	assert.True(t, aps[1].Hidden)
	assert.Nil(t, aps[1].SSID)
	assert.Nil(t, aps[1].RSN)
	assert.Equal(t, domain.EncryptionWPA2Enterprise, aps[1].Encryption)
}

func TestSaveAccessPoints_Upsert(t *testing.T) {
	adapter := setupDB(t)
	ctx := context.Background()

	ap := revealedAP()
	require.NoError(t, adapter.SaveAccessPoints(ctx, "session-1", []domain.AccessPoint{ap}))

	ap.RSSI = -40
	ap.LastSeen = seen.Add(time.Hour)
	require.NoError(t, adapter.SaveAccessPoints(ctx, "session-2", []domain.AccessPoint{ap}))

	aps, err := adapter.LoadAccessPoints(ctx)
	require.NoError(t, err)
	require.Len(t, aps, 1)
	assert.Equal(t, -40, aps[0].RSSI)
	assert.True(t, seen.Add(time.Hour).Equal(aps[0].LastSeen))

	require.NoError(t, adapter.SaveAccessPoints(ctx, "session-3", nil))
}

func TestSessions(t *testing.T) {
	adapter := setupDB(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, adapter.SaveSession(ctx, domain.SessionSummary{
			ID:        id,
			Mode:      domain.ModeAPScan,
			StartedAt: seen.Add(time.Duration(i) * time.Hour),
			EndedAt:   seen.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			Counts:    domain.Counts{AccessPoints: 10 + i, Revealed: i},
			Stats:     domain.Statistics{Beacons: 1000, HiddenRevealed: uint64(i)},
		}))
	}

	sessions, err := adapter.Sessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "c", sessions[0].ID)
	assert.Equal(t, "b", sessions[1].ID)
	assert.Equal(t, 12, sessions[0].Counts.AccessPoints)
	assert.Equal(t, uint64(1000), sessions[0].Stats.Beacons)
	assert.Equal(t, domain.ModeAPScan, sessions[0].Mode)

	all, err := adapter.Sessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

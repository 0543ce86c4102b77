package config

import (
	"testing"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load([]string{"-db", "x.db"}, envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "wlan0", cfg.Interface)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "x.db", cfg.DBPath)
	assert.Equal(t, domain.ModeIdle, cfg.AutoStart)
	assert.Equal(t, domain.DefaultChannels(), cfg.Channels)
	assert.Equal(t, 250*time.Millisecond, cfg.HopInterval)
	assert.Zero(t, cfg.Duration)
	assert.Equal(t, domain.MinRSSI, cfg.MinRSSI)
	assert.Equal(t, domain.DefaultFeatures(), cfg.Features)
	assert.Equal(t, []string{"http://localhost:8080", "http://127.0.0.1:8080"}, cfg.AllowedOrigins)
}

func TestLoad_EnvThenFlags(t *testing.T) {
	env := envOf(map[string]string{
		"WREVEAL_INTERFACE":    "wlan1mon",
		"WREVEAL_ADDR":         ":9000",
		"WREVEAL_DB":           "env.db",
		"WREVEAL_CHANNELS":     "1,6,11",
		"WREVEAL_HOP_INTERVAL": "1s",
		"WREVEAL_MIN_RSSI":     "-85",
		"WREVEAL_DEBUG":        "true",
		"WREVEAL_AUTOSTART":    "ap",
		"WREVEAL_FEATURES":     "mac_filtering=false",
		"WREVEAL_REPLAY":       "old.pcap",
	})

	cfg, err := load([]string{"-addr", ":7000", "-channels", "6", "-start", "client_scan", "-replay-pace"}, env)
	require.NoError(t, err)

	assert.Equal(t, "wlan1mon", cfg.Interface)
	assert.Equal(t, ":7000", cfg.Addr, "flag overrides env")
	assert.Equal(t, "env.db", cfg.DBPath)
	assert.Equal(t, []int{6}, cfg.Channels)
	assert.Equal(t, time.Second, cfg.HopInterval)
	assert.Equal(t, -85, cfg.MinRSSI)
	assert.True(t, cfg.Debug)
	assert.Equal(t, domain.ModeClientScan, cfg.AutoStart)
	assert.False(t, cfg.Features.MACFiltering)
	assert.True(t, cfg.Features.ProbeSniffing)
	assert.Equal(t, "old.pcap", cfg.ReplayPath)
	assert.True(t, cfg.ReplayPace)
}

func TestLoad_BadEnvFallsBack(t *testing.T) {
	cfg, err := load([]string{"-db", "x.db"}, envOf(map[string]string{
		"WREVEAL_HOP_INTERVAL": "fast",
		"WREVEAL_MIN_RSSI":     "loud",
		"WREVEAL_DEBUG":        "maybe",
	}))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.HopInterval)
	assert.Equal(t, domain.MinRSSI, cfg.MinRSSI)
	assert.False(t, cfg.Debug)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad channel", []string{"-channels", "1,99"}},
		{"channel not a number", []string{"-channels", "one"}},
		{"bad mode", []string{"-start", "attack"}},
		{"unknown feature", []string{"-features", "turbo"}},
		{"bad feature value", []string{"-features", "probe_debug=sometimes"}},
		{"queue", []string{"-queue", "0"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(append([]string{"-db", "x.db"}, tt.args...), envOf(nil))
			assert.Error(t, err)
		})
	}
}

func TestApplyFeatures(t *testing.T) {
	f := domain.Features{}
	require.NoError(t, applyFeatures(&f, "probe_debug, wps_detection=true ,ssid_tracking=0"))
	assert.True(t, f.ProbeDebug)
	assert.True(t, f.WPSDetection)
	assert.False(t, f.SSIDTracking)
}

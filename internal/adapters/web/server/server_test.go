package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/adapters/reporting"
	"github.com/lcalzada-xor/wreveal/internal/adapters/web"
	"github.com/lcalzada-xor/wreveal/internal/adapters/web/server"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/services/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	hiddenAP = domain.AccessPoint{
		BSSID:           domain.MustParseMAC("00:11:22:33:44:55"),
		DisplaySSID:     "HomeNet",
		SSID:            []byte("HomeNet"),
		OriginalSSIDLen: 7,
		Hidden:          true,
		SSIDKnown:       true,
		SSIDRevealed:    true,
		RevealSource:    domain.RevealAssociation,
		RSSI:            -48,
		Channel:         6,
		Encryption:      domain.EncryptionWPA2,
	}
	openAP = domain.AccessPoint{
		BSSID:       domain.MustParseMAC("00:11:22:33:44:66"),
		DisplaySSID: "Cafe",
		SSIDKnown:   true,
		RSSI:        -70,
		Channel:     1,
	}
	idle = domain.ScanState{Mode: domain.ModeIdle, Channels: domain.DefaultChannels(), HopInterval: 250 * time.Millisecond}
)

func setupServer(t *testing.T, tokenHash string) (http.Handler, *web.MockScanService) {
	svc := new(web.MockScanService)
	srv, err := server.NewServer(server.Options{Addr: ":0", TokenHash: tokenHash}, svc, reporting.NewPDFExporter())
	require.NoError(t, err)
	return srv.Handler(), svc
}

func do(h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Status(t *testing.T) {
	h, svc := setupServer(t, "")
	svc.On("Status").Return(idle)
	svc.On("Counts").Return(domain.Counts{AccessPoints: 2, Hidden: 1, Revealed: 1})
	svc.On("Statistics").Return(domain.Statistics{Beacons: 10})

	rec := do(h, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		State      domain.ScanState  `json:"state"`
		Counts     domain.Counts     `json:"counts"`
		Statistics domain.Statistics `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ModeIdle, resp.State.Mode)
	assert.Equal(t, 1, resp.Counts.Revealed)
	assert.Equal(t, uint64(10), resp.Statistics.Beacons)
}

func TestServer_AccessPoints(t *testing.T) {
	h, svc := setupServer(t, "")
	svc.On("AccessPoints").Return([]domain.AccessPoint{hiddenAP, openAP})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"HomeNet", "Cafe"}},
		{"?hidden=true", []string{"HomeNet"}},
		{"?revealed=1", []string{"HomeNet"}},
	}
	for _, tt := range tests {
		t.Run("query"+tt.query, func(t *testing.T) {
			rec := do(h, http.MethodGet, "/api/access-points"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp struct {
				AccessPoints []domain.AccessPoint `json:"access_points"`
				Total        int                  `json:"total"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			var names []string
			for _, ap := range resp.AccessPoints {
				names = append(names, ap.DisplaySSID)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), resp.Total)
		})
	}
}

func TestServer_AccessPointByBSSID(t *testing.T) {
	h, svc := setupServer(t, "")
	svc.On("AccessPoint", hiddenAP.BSSID).Return(hiddenAP, true)
	svc.On("AccessPoint", mock.Anything).Return(domain.AccessPoint{}, false)

	rec := do(h, http.MethodGet, "/api/access-points/00:11:22:33:44:55", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ap domain.AccessPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ap))
	assert.Equal(t, hiddenAP.BSSID, ap.BSSID)
	assert.Equal(t, domain.RevealAssociation, ap.RevealSource)

	rec = do(h, http.MethodGet, "/api/access-points/00:11:22:33:44:99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/api/access-points/not-a-mac", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Start(t *testing.T) {
	tests := []struct {
		name     string
		body     interface{}
		startErr error
		wantMode domain.ScanMode
		want     int
	}{
		{"ap scan", map[string]string{"mode": "ap_scan"}, nil, domain.ModeAPScan, http.StatusOK},
		{"short client form", map[string]string{"mode": "sta"}, nil, domain.ModeClientScan, http.StatusOK},
		{"unknown mode", map[string]string{"mode": "deauth"}, nil, "", http.StatusBadRequest},
		{"bad body", "{", nil, "", http.StatusBadRequest},
		{"controller rejects", map[string]string{"mode": "ap"}, fmt.Errorf("start: %w", scan.ErrInvalidChannel), domain.ModeAPScan, http.StatusBadRequest},
		{"internal failure", map[string]string{"mode": "ap"}, errors.New("boom"), domain.ModeAPScan, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := setupServer(t, "")
			svc.On("Start", tt.wantMode).Return(tt.startErr)
			svc.On("Status").Return(domain.ScanState{Mode: tt.wantMode})

			rec := do(h, http.MethodPost, "/api/scan/start", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			if tt.wantMode == "" {
				svc.AssertNotCalled(t, "Start", mock.Anything)
			}
		})
	}
}

func TestServer_StopRequiresPost(t *testing.T) {
	h, svc := setupServer(t, "")
	svc.On("Stop").Return(nil)
	svc.On("Status").Return(idle)

	assert.NotEqual(t, http.StatusOK, do(h, http.MethodGet, "/api/scan/stop", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/scan/stop", nil).Code)
	svc.AssertNumberOfCalls(t, "Stop", 1)
}

func TestServer_Settings(t *testing.T) {
	h, svc := setupServer(t, "")
	svc.On("SetDuration", 30*time.Second).Return(nil)
	svc.On("SetHopInterval", 500*time.Millisecond).Return(nil)
	svc.On("SetMinRSSI", -80).Return(nil)
	svc.On("SetChannels", []int{1, 6, 11}).Return(nil)
	svc.On("Status").Return(idle)

	rec := do(h, http.MethodPut, "/api/settings", map[string]interface{}{
		"duration_seconds": 30,
		"hop_interval_ms":  500,
		"min_rssi":         -80,
		"channels":         []int{1, 6, 11},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestServer_SettingsStopsAtFirstError(t *testing.T) {
	h, svc := setupServer(t, "")
	svc.On("SetHopInterval", time.Duration(0)).Return(scan.ErrInvalidHopInterval)

	rec := do(h, http.MethodPut, "/api/settings", map[string]interface{}{
		"hop_interval_ms": 0,
		"channels":        []int{1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "hop interval")
	svc.AssertNotCalled(t, "SetChannels", mock.Anything)
}

func TestServer_Feature(t *testing.T) {
	h, svc := setupServer(t, "")
	svc.On("SetFeature", domain.FeatureMACFiltering, false).Return(nil)
	svc.On("SetFeature", domain.Feature("turbo"), true).Return(scan.ErrUnknownFeature)
	svc.On("Status").Return(domain.ScanState{Features: domain.Features{ProbeSniffing: true}})

	rec := do(h, http.MethodPut, "/api/features/mac_filtering", map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)
	var f domain.Features
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.True(t, f.ProbeSniffing)

	rec = do(h, http.MethodPut, "/api/features/turbo", map[string]bool{"enabled": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Snapshot(t *testing.T) {
	h, svc := setupServer(t, "")
	svc.On("SaveSnapshot", mock.Anything).Return(nil).Once()
	svc.On("LoadSnapshot", mock.Anything).Return(3, nil).Once()
	svc.On("Counts").Return(domain.Counts{AccessPoints: 3})

	rec := do(h, http.MethodPost, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_points":3`)

	rec = do(h, http.MethodPost, "/api/snapshot/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loaded":3`)

	svc.On("SaveSnapshot", mock.Anything).Return(scan.ErrNoSnapshotStore)
	rec = do(h, http.MethodPost, "/api/snapshot", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Inventories(t *testing.T) {
	h, svc := setupServer(t, "")
	phone := domain.MustParseMAC("00:aa:bb:cc:dd:01")
	svc.On("Clients").Return([]domain.Client{{MAC: phone, APBSSID: &hiddenAP.BSSID}})
	svc.On("Associations").Return([]domain.Association{{Client: phone, BSSID: hiddenAP.BSSID, AssociationCount: 1}})
	svc.On("ProbeCache").Return([]domain.ProbeEntry{{Client: phone, SSID: domain.KnownSSID([]byte("HomeNet")), Target: domain.BroadcastMAC}})
	svc.On("SSIDStats").Return([]domain.SSIDStat{{SSID: "HomeNet", ProbeCount: 4}})

	for path, key := range map[string]string{
		"/api/clients":      "clients",
		"/api/associations": "associations",
		"/api/probes":       "probes",
		"/api/ssids":        "ssids",
	} {
		rec := do(h, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var resp map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), path)
		assert.Contains(t, resp, key, path)
	}
}

func TestServer_Report(t *testing.T) {
	h, svc := setupServer(t, "")
	svc.On("Status").Return(domain.ScanState{Mode: domain.ModeAPScan, SessionID: "abc"})
	svc.On("Counts").Return(domain.Counts{AccessPoints: 2, Hidden: 1, Revealed: 1})
	svc.On("Statistics").Return(domain.Statistics{})
	svc.On("AccessPoints").Return([]domain.AccessPoint{hiddenAP, openAP})
	svc.On("Clients").Return([]domain.Client{})

	rec := do(h, http.MethodGet, "/api/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "wreveal-")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestServer_TokenAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	h, svc := setupServer(t, string(hash))
	svc.On("Status").Return(idle)
	svc.On("Counts").Return(domain.Counts{})
	svc.On("Statistics").Return(domain.Statistics{})

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/status", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/metrics", nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer letmein")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer letmein")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewServer_BadTokenHash(t *testing.T) {
	_, err := server.NewServer(server.Options{TokenHash: "plain"}, new(web.MockScanService), reporting.NewPDFExporter())
	assert.Error(t, err)
}

// Package mock simulates a radio environment for running without hardware.
package mock

import (
	"math/rand"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// Common SSIDs for realistic mock data
var commonSSIDs = []string{
	"HomeNetwork", "NETGEAR-5G", "Starbucks WiFi", "TP-Link_2.4GHz",
	"Linksys", "ATT-WiFi", "Xfinity", "Google Fiber",
	"Office-Network", "Guest-WiFi", "MyWiFi", "Home-2.4G",
	"DIRECT-Printer", "AndroidAP", "CoffeeShop_Free", "Airport_WiFi",
	"Hotel-Guest", "Apartment_5G", "CorpSecure", "Lab-Internal",
}

// Vendor OUI prefixes (first 3 bytes of MAC)
var vendorPrefixes = [][3]byte{
	{0x00, 0x17, 0xF2}, // Apple
	{0x00, 0x12, 0xFB}, // Samsung
	{0x00, 0x1E, 0xBD}, // Cisco
	{0x50, 0xC7, 0xBF}, // TP-Link
	{0xA0, 0x63, 0x91}, // Netgear
	{0x00, 0x14, 0xBF}, // Linksys
	{0xF4, 0xF5, 0xD8}, // Google
	{0x00, 0x13, 0x02}, // Intel
	{0x00, 0x1F, 0xC6}, // Asus
	{0x00, 0x17, 0x9A}, // D-Link
}

// Security types
type security int

const (
	securityOpen security = iota
	securityWEP
	securityWPA2
	securityWPA3
)

var channels24GHz = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}

// MockAP is a simulated access point.
type MockAP struct {
	BSSID    domain.MAC
	SSID     string
	Channel  int
	Security security
	RSSI     int
	WPS      bool
	Hidden   bool
}

// MockStation is a simulated client. A nil AP means it only probes.
type MockStation struct {
	MAC       domain.MAC
	RSSI      int
	AP        *MockAP
	Preferred []string // SSIDs it probes for
}

// DataGenerator builds a mock scenario.
type DataGenerator struct {
	rand     *rand.Rand
	used     map[domain.MAC]bool
	aps      []*MockAP
	stations []*MockStation
}

// NewDataGenerator creates a generator with a fixed seed.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rand: rand.New(rand.NewSource(seed)),
		used: make(map[domain.MAC]bool),
	}
}

// GenerateMAC returns an unused globally administered address with a
// vendor prefix.
func (g *DataGenerator) GenerateMAC() domain.MAC {
	for {
		var m domain.MAC
		copy(m[:3], vendorPrefixes[g.rand.Intn(len(vendorPrefixes))][:])
		m[3] = byte(g.rand.Intn(256))
		m[4] = byte(g.rand.Intn(256))
		m[5] = byte(g.rand.Intn(256))
		if !g.used[m] {
			g.used[m] = true
			return m
		}
	}
}

// GenerateAP creates a mock access point. hiddenRatio is the chance it
// hides its SSID.
func (g *DataGenerator) GenerateAP(hiddenRatio float32) *MockAP {
	ap := &MockAP{
		BSSID:    g.GenerateMAC(),
		SSID:     commonSSIDs[g.rand.Intn(len(commonSSIDs))],
		Channel:  channels24GHz[g.rand.Intn(len(channels24GHz))],
		Security: g.weightedSecurity(),
		RSSI:     -30 - g.rand.Intn(40), // -30 to -70 dBm
		WPS:      g.rand.Float32() < 0.3,
		Hidden:   g.rand.Float32() < hiddenRatio,
	}
	g.aps = append(g.aps, ap)
	return ap
}

// GenerateStation creates a mock station, connected to ap when non-nil.
func (g *DataGenerator) GenerateStation(ap *MockAP) *MockStation {
	sta := &MockStation{
		MAC:  g.GenerateMAC(),
		RSSI: -40 - g.rand.Intn(50), // -40 to -90 dBm
		AP:   ap,
	}
	if ap != nil {
		sta.Preferred = append(sta.Preferred, ap.SSID)
	}
	for i := g.rand.Intn(3); i > 0; i-- {
		sta.Preferred = append(sta.Preferred, commonSSIDs[g.rand.Intn(len(commonSSIDs))])
	}
	g.stations = append(g.stations, sta)
	return sta
}

// GenerateScenario creates a complete mock scenario: "basic", "crowded" or
// "hidden". Unknown names fall back to basic.
func (g *DataGenerator) GenerateScenario(scenario string) {
	numAPs, numStations, hiddenRatio := 5, 10, float32(0.2)
	switch scenario {
	case "crowded":
		numAPs, numStations = 20, 50
	case "hidden":
		numAPs, numStations, hiddenRatio = 8, 15, 0.6
	}

	for i := 0; i < numAPs; i++ {
		g.GenerateAP(hiddenRatio)
	}
	// at least one hidden network so reveals can be exercised
	if hiddenRatio > 0 && g.HiddenCount() == 0 && len(g.aps) > 0 {
		g.aps[0].Hidden = true
	}

	// 80% connected, 20% probing
	for i := 0; i < numStations; i++ {
		var ap *MockAP
		if g.rand.Float32() < 0.8 {
			ap = g.aps[g.rand.Intn(len(g.aps))]
		}
		g.GenerateStation(ap)
	}
}

// GetAPs returns all APs
func (g *DataGenerator) GetAPs() []*MockAP {
	return g.aps
}

// GetStations returns all stations
func (g *DataGenerator) GetStations() []*MockStation {
	return g.stations
}

// HiddenCount returns the number of hidden APs.
func (g *DataGenerator) HiddenCount() int {
	n := 0
	for _, ap := range g.aps {
		if ap.Hidden {
			n++
		}
	}
	return n
}

func (g *DataGenerator) weightedSecurity() security {
	r := g.rand.Float32()
	switch {
	case r < 0.6:
		return securityWPA2
	case r < 0.8:
		return securityWPA3
	case r < 0.85:
		return securityWEP
	}
	return securityOpen
}

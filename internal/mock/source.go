package mock

import (
	"context"
	"math/rand"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/dot11"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/sniffertest"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// DefaultInterval is the pause between two simulated rounds.
const DefaultInterval = 100 * time.Millisecond

// Source emits raw frames for a generated scenario. Each round every AP
// beacons and every station sends one frame: traffic to its AP, or a probe.
type Source struct {
	Interval time.Duration
	Rounds   int // 0 runs until ctx is done

	gen  *DataGenerator
	rand *rand.Rand
}

var _ ports.FrameSource = (*Source)(nil)

// NewSource builds the scenario up front so repeated runs replay the same
// environment.
func NewSource(scenario string, seed int64) *Source {
	gen := NewDataGenerator(seed)
	gen.GenerateScenario(scenario)
	return &Source{
		Interval: DefaultInterval,
		gen:      gen,
		rand:     rand.New(rand.NewSource(seed + 1)),
	}
}

// Generator exposes the scenario.
func (s *Source) Generator() *DataGenerator { return s.gen }

func (s *Source) Run(ctx context.Context, fn func(domain.Frame)) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for round := 0; s.Rounds == 0 || round < s.Rounds; round++ {
		for _, f := range s.round() {
			fn(f)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func (s *Source) round() []domain.Frame {
	var frames []domain.Frame
	for _, ap := range s.gen.aps {
		frames = append(frames, s.beacon(ap))
	}
	for _, sta := range s.gen.stations {
		frames = append(frames, s.station(sta))
	}
	return frames
}

func (s *Source) beacon(ap *MockAP) domain.Frame {
	var capability uint16 = 0x0001 // ESS
	if ap.Security != securityOpen {
		capability |= dot11.CapabilityPrivacy
	}
	b := sniffertest.Beacon(ap.BSSID, capability)
	if ap.Hidden {
		b.HiddenSSID(len(ap.SSID))
	} else {
		b.SSID(ap.SSID)
	}
	b.DSChannel(ap.Channel)
	switch ap.Security {
	case securityWPA2:
		b.RSN(2)
	case securityWPA3:
		b.RSN(8)
	}
	if ap.WPS {
		b.WPS(sniffertest.WPSAttr{Type: 0x1044, Value: []byte{0x02}})
	}
	return b.Frame(s.jitter(ap.RSSI), ap.Channel)
}

// station picks one frame a station would send this round.
func (s *Source) station(sta *MockStation) domain.Frame {
	channel := channels24GHz[s.rand.Intn(len(channels24GHz))]
	if sta.AP != nil {
		channel = sta.AP.Channel
	}
	rssi := s.jitter(sta.RSSI)

	r := s.rand.Float32()
	switch {
	case sta.AP != nil && r < 0.1:
		return sniffertest.AssocRequest(sta.MAC, sta.AP.BSSID).SSID(sta.AP.SSID).Frame(rssi, channel)
	case sta.AP != nil && sta.AP.Hidden && r < 0.2:
		// roaming check against the hidden AP it knows
		return sniffertest.ProbeRequest(sta.MAC, sta.AP.BSSID).SSID(sta.AP.SSID).Frame(rssi, channel)
	case sta.AP != nil && r < 0.8:
		return sniffertest.DataToAP(sta.MAC, sta.AP.BSSID).Frame(rssi, channel)
	case len(sta.Preferred) > 0 && r < 0.9:
		ssid := sta.Preferred[s.rand.Intn(len(sta.Preferred))]
		return sniffertest.ProbeRequest(sta.MAC, domain.BroadcastMAC).SSID(ssid).Frame(rssi, channel)
	}
	return sniffertest.ProbeRequest(sta.MAC, domain.BroadcastMAC).SSID("").Frame(rssi, channel)
}

func (s *Source) jitter(rssi int) int {
	return rssi + s.rand.Intn(7) - 3
}

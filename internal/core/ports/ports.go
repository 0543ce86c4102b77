package ports

import (
	"context"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// FrameSource delivers captured frames. Run blocks until ctx is cancelled or
// the source is exhausted, calling fn once per frame in arrival order.
type FrameSource interface {
	Run(ctx context.Context, fn func(domain.Frame)) error
}

// ChannelSwitcher tunes a radio interface.
type ChannelSwitcher interface {
	SetChannel(iface string, channel int) error
}

// ChannelHopper tunes a radio through a channel plan for one scan session.
// Start blocks until Stop.
type ChannelHopper interface {
	Start()
	Stop()
	SetChannels(channels []int)
	SetDelay(d time.Duration)
}

// HopperFactory builds the hopper of a new session. onHop is called after
// every successful tune.
type HopperFactory func(channels []int, delay time.Duration, onHop func(channel int, at time.Time)) ChannelHopper

// FrameDecoder parses one raw frame.
type FrameDecoder interface {
	Decode(f domain.Frame) (domain.Observation, error)
}

// VendorLookup resolves the manufacturer of a MAC address.
type VendorLookup interface {
	LookupVendor(ctx context.Context, mac domain.MAC) (string, error)
}

// SnapshotStore persists the AP table across sessions.
type SnapshotStore interface {
	SaveAccessPoints(ctx context.Context, sessionID string, aps []domain.AccessPoint) error
	LoadAccessPoints(ctx context.Context) ([]domain.AccessPoint, error)
	SaveSession(ctx context.Context, s domain.SessionSummary) error
	Close() error
}

// EventPublisher receives controller notifications. Publish must not block.
type EventPublisher interface {
	Publish(e domain.Event)
}

// ScanService is the query and control surface of the scan controller.
type ScanService interface {
	AccessPoints() []domain.AccessPoint
	AccessPoint(bssid domain.MAC) (domain.AccessPoint, bool)
	Clients() []domain.Client
	Counts() domain.Counts
	ProbeCache() []domain.ProbeEntry
	Associations() []domain.Association
	Status() domain.ScanState
	Statistics() domain.Statistics
	SSIDStats() []domain.SSIDStat

	Start(mode domain.ScanMode) error
	Stop() error
	SetDuration(d time.Duration) error
	SetHopInterval(d time.Duration) error
	SetMinRSSI(rssi int) error
	SetChannels(channels []int) error
	SetFeature(name domain.Feature, on bool) error
	SaveSnapshot(ctx context.Context) error
	LoadSnapshot(ctx context.Context) (int, error)
}

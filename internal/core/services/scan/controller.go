// Package scan runs scan sessions: it owns the registries, routes decoded
// frames into them and drives the periodic maintenance passes.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
	"github.com/lcalzada-xor/wreveal/internal/core/services/correlation"
	"github.com/lcalzada-xor/wreveal/internal/core/services/registry"
	"github.com/lcalzada-xor/wreveal/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

const (
	// SweepInterval is the period of the correlation sweep and the duration check.
	SweepInterval = time.Second
	// CleanupInterval is the period of staleness eviction.
	CleanupInterval = 5 * time.Second
	// DefaultStaleAfter is the age past which clients and associations are dropped.
	DefaultStaleAfter = 30 * time.Second
	// DefaultHopInterval is the dwell time per channel.
	DefaultHopInterval = 300 * time.Millisecond
	// DefaultMinRSSI admits almost everything the radio reports.
	DefaultMinRSSI = -90
	// DefaultQueueSize bounds the frames waiting for the controller loop.
	DefaultQueueSize = 1024

	sessionSaveTimeout = 5 * time.Second
)

// Config holds the settings of a controller. Zero values select defaults.
type Config struct {
	Interface       string
	Channels        []int
	HopInterval     time.Duration
	Duration        time.Duration // 0 runs until stopped
	MinRSSI         int
	Features        domain.Features
	QueueSize       int
	MaxAccessPoints int
	MaxClients      int
	MaxAssociations int
	MaxSSIDStats    int
	ProbeCacheSize  int
	ProbeTTL        time.Duration
	StaleAfter      time.Duration
}

// DefaultConfig returns the usual settings with all default features on.
func DefaultConfig() Config {
	return Config{
		Channels:    domain.DefaultChannels(),
		HopInterval: DefaultHopInterval,
		MinRSSI:     DefaultMinRSSI,
		Features:    domain.DefaultFeatures(),
		QueueSize:   DefaultQueueSize,
		StaleAfter:  DefaultStaleAfter,
	}
}

// Deps are the collaborators of a controller. Only Decoder is required.
type Deps struct {
	Decoder   ports.FrameDecoder
	NewHopper ports.HopperFactory
	Vendors   ports.VendorLookup
	Store     ports.SnapshotStore
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Clock     func() time.Time
}

// Controller is the scan state machine idle → ap_scan | client_scan → idle.
//
// Frames enter through Enqueue from any goroutine. Only the Run goroutine
// mutates the registries; queries take a read lock and return copies.
type Controller struct {
	iface      string
	staleAfter time.Duration

	decoder   ports.FrameDecoder
	newHopper ports.HopperFactory
	store     ports.SnapshotStore
	log       *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	events    *Subject

	queue   chan queuedFrame
	active  atomic.Bool
	session atomic.Uint64 // bumped by every Start
	dropped atomic.Uint64

	mu       sync.RWMutex
	state    domain.ScanState
	stats    domain.Statistics
	tracker  *registry.Tracker
	ssids    *registry.SSIDManager
	revealer *correlation.Revealer
	hopper   ports.ChannelHopper
}

// NewController validates cfg and builds an idle controller.
func NewController(cfg Config, deps Deps) (*Controller, error) {
	if deps.Decoder == nil {
		return nil, ErrNoDecoder
	}
	if len(cfg.Channels) == 0 {
		cfg.Channels = domain.DefaultChannels()
	}
	for _, ch := range cfg.Channels {
		if !domain.ValidChannel(ch) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
		}
	}
	if cfg.HopInterval <= 0 {
		cfg.HopInterval = DefaultHopInterval
	}
	if cfg.Duration < 0 {
		return nil, ErrInvalidDuration
	}
	if cfg.MinRSSI == 0 {
		cfg.MinRSSI = DefaultMinRSSI
	}
	if !validMinRSSI(cfg.MinRSSI) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRSSI, cfg.MinRSSI)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	tracker := registry.NewTracker(
		registry.NewAPRegistry(cfg.MaxAccessPoints),
		registry.NewClientRegistry(cfg.MaxClients, deps.Vendors),
		registry.NewAssociationIndex(cfg.MaxAssociations),
	)
	revealer := correlation.NewRevealer(
		correlation.NewProbeCache(cfg.ProbeCacheSize, cfg.ProbeTTL),
		tracker.APs,
		logger,
	)
	revealer.Debug = cfg.Features.ProbeDebug

	return &Controller{
		iface:      cfg.Interface,
		staleAfter: cfg.StaleAfter,
		decoder:    deps.Decoder,
		newHopper:  deps.NewHopper,
		store:      deps.Store,
		log:        logger,
		tracer:     tracer,
		now:        clock,
		events:     NewSubject(),
		queue:      make(chan queuedFrame, cfg.QueueSize),
		state: domain.ScanState{
			Mode:        domain.ModeIdle,
			Channel:     cfg.Channels[0],
			Channels:    append([]int(nil), cfg.Channels...),
			HopInterval: cfg.HopInterval,
			Duration:    cfg.Duration,
			MinRSSI:     cfg.MinRSSI,
			Features:    cfg.Features,
		},
		tracker:  tracker,
		ssids:    registry.NewSSIDManager(cfg.MaxSSIDStats),
		revealer: revealer,
	}, nil
}

// Subscribe registers a publisher for controller events.
func (c *Controller) Subscribe(p ports.EventPublisher) {
	c.events.AddObserver(p)
}

// queuedFrame is a frame tagged with the session it was captured in.
type queuedFrame struct {
	frame   domain.Frame
	session uint64
}

// Enqueue hands a captured frame to the controller loop without blocking.
// It reports false when no session is active or the queue is full; the
// latter is counted as a dropped frame. f.Data is copied.
func (c *Controller) Enqueue(f domain.Frame) bool {
	q, ok := c.admit(f)
	if !ok {
		return false
	}
	select {
	case c.queue <- q:
		return true
	default:
		c.dropped.Add(1)
		telemetry.FramesDropped.WithLabelValues(telemetry.DropQueueFull).Inc()
		return false
	}
}

// EnqueueWait is Enqueue for sources that can be slowed down, such as a
// file replay: it waits for queue space instead of dropping. It reports
// false when no session is active or ctx ends first.
func (c *Controller) EnqueueWait(ctx context.Context, f domain.Frame) bool {
	q, ok := c.admit(f)
	if !ok {
		return false
	}
	select {
	case c.queue <- q:
		return true
	case <-ctx.Done():
		return false
	}
}

// admit tags f with the running session. The session is read before the
// active flag so a frame never carries the number of a later session.
func (c *Controller) admit(f domain.Frame) (queuedFrame, bool) {
	telemetry.FramesCaptured.WithLabelValues(c.iface).Inc()
	session := c.session.Load()
	if !c.active.Load() {
		return queuedFrame{}, false
	}
	f.Data = append([]byte(nil), f.Data...)
	return queuedFrame{frame: f, session: session}, true
}

// Start begins a session in mode, clearing every registry and cache. A
// running session is stopped first.
func (c *Controller) Start(mode domain.ScanMode) error {
	if !mode.Active() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err := c.Stop(); err != nil {
		return err
	}

	now := c.now()
	c.mu.Lock()
	c.tracker.Clear()
	c.ssids.Clear()
	c.revealer.Cache().Clear()
	c.stats = domain.Statistics{}
	c.dropped.Store(0)
	c.drainQueue()

	c.session.Add(1)
	c.state.SessionID = uuid.NewString()
	c.state.Mode = mode
	c.state.StartedAt = now
	c.state.Channel = c.state.Channels[0]
	c.state.LastChannelHop = time.Time{}

	var hopper ports.ChannelHopper
	if c.newHopper != nil {
		hopper = c.newHopper(c.state.Channels, c.state.HopInterval, c.onHop)
		c.hopper = hopper
	}
	c.active.Store(true)
	state := c.state
	c.mu.Unlock()

	if hopper != nil {
		go hopper.Start()
	}

	c.log.Info("scan started",
		"session", state.SessionID,
		"mode", string(state.Mode),
		"channels", state.Channels,
		"hop_interval", state.HopInterval.String(),
		"duration", state.Duration.String())
	c.events.Publish(domain.Event{Type: domain.EventScanStarted, Timestamp: now, Payload: state})
	return nil
}

// Stop ends the running session at once. Queued frames are discarded; the
// registries stay readable until the next Start. Stopping an idle
// controller is a no-op.
func (c *Controller) Stop() error {
	now := c.now()
	c.mu.Lock()
	if !c.state.Mode.Active() {
		c.mu.Unlock()
		return nil
	}
	c.active.Store(false)
	if c.hopper != nil {
		c.hopper.Stop()
		c.hopper = nil
	}
	c.drainQueue()

	summary := domain.SessionSummary{
		ID:        c.state.SessionID,
		Mode:      c.state.Mode,
		StartedAt: c.state.StartedAt,
		EndedAt:   now,
		Counts:    c.countsLocked(),
		Stats:     c.statisticsLocked(),
	}
	c.state.Mode = domain.ModeIdle
	c.mu.Unlock()

	c.log.Info("scan stopped",
		"session", summary.ID,
		"access_points", summary.Counts.AccessPoints,
		"hidden", summary.Counts.Hidden,
		"revealed", summary.Counts.Revealed,
		"clients", summary.Counts.Clients)

	if c.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), sessionSaveTimeout)
		defer cancel()
		if err := c.store.SaveSession(ctx, summary); err != nil {
			c.log.Warn("failed to save session summary", "session", summary.ID, "error", err)
		}
	}
	c.events.Publish(domain.Event{Type: domain.EventScanStopped, Timestamp: now, Payload: summary})
	return nil
}

// drainQueue discards queued frames. Callers hold c.mu.
func (c *Controller) drainQueue() {
	for {
		select {
		case <-c.queue:
		default:
			return
		}
	}
}

// onHop records a completed channel change.
func (c *Controller) onHop(ch int, at time.Time) {
	c.mu.Lock()
	if c.state.Mode.Active() {
		c.state.Channel = ch
		c.state.LastChannelHop = at
	}
	c.mu.Unlock()
	telemetry.CurrentChannel.Set(float64(ch))
}

// SetDuration bounds the session length; 0 runs until stopped.
func (c *Controller) SetDuration(d time.Duration) error {
	if d < 0 {
		return ErrInvalidDuration
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Duration = d
	return nil
}

// SetHopInterval changes the dwell time per channel.
func (c *Controller) SetHopInterval(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidHopInterval
	}
	c.mu.Lock()
	c.state.HopInterval = d
	hopper := c.hopper
	c.mu.Unlock()

	if hopper != nil {
		hopper.SetDelay(d)
	}
	return nil
}

// SetMinRSSI sets the admission threshold in dBm.
func (c *Controller) SetMinRSSI(rssi int) error {
	if !validMinRSSI(rssi) {
		return fmt.Errorf("%w: %d", ErrInvalidRSSI, rssi)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.MinRSSI = rssi
	return nil
}

func validMinRSSI(rssi int) bool {
	return rssi >= domain.MinRSSI && rssi <= 0
}

// SetChannels replaces the channel plan. A single channel fixes the radio
// on it.
func (c *Controller) SetChannels(channels []int) error {
	if len(channels) == 0 {
		return fmt.Errorf("%w: empty channel plan", ErrInvalidChannel)
	}
	for _, ch := range channels {
		if !domain.ValidChannel(ch) {
			return fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
		}
	}
	plan := append([]int(nil), channels...)

	c.mu.Lock()
	c.state.Channels = plan
	hopper := c.hopper
	c.mu.Unlock()

	// The hopper reports back through onHop, which takes c.mu.
	if hopper != nil {
		hopper.SetChannels(plan)
	}
	return nil
}

// SetFeature flips one feature toggle.
func (c *Controller) SetFeature(name domain.Feature, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Features.Set(name, on) {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	c.revealer.Debug = c.state.Features.ProbeDebug
	return nil
}

// SaveSnapshot persists the AP table under the current session ID.
func (c *Controller) SaveSnapshot(ctx context.Context) error {
	if c.store == nil {
		return ErrNoSnapshotStore
	}
	ctx, span := c.tracer.Start(ctx, "scan.SaveSnapshot")
	defer span.End()

	c.mu.RLock()
	session := c.state.SessionID
	aps := c.tracker.APs.Snapshot()
	c.mu.RUnlock()

	if err := c.store.SaveAccessPoints(ctx, session, aps); err != nil {
		span.RecordError(err)
		return fmt.Errorf("save snapshot: %w", err)
	}
	c.log.Info("snapshot saved", "session", session, "access_points", len(aps))
	return nil
}

// LoadSnapshot restores persisted APs into the registry, keeping their
// reveal state. It returns how many records were restored.
func (c *Controller) LoadSnapshot(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, ErrNoSnapshotStore
	}
	ctx, span := c.tracer.Start(ctx, "scan.LoadSnapshot")
	defer span.End()

	aps, err := c.store.LoadAccessPoints(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("load snapshot: %w", err)
	}

	c.mu.Lock()
	for _, ap := range aps {
		c.tracker.APs.Restore(ap)
	}
	c.mu.Unlock()

	c.log.Info("snapshot loaded", "access_points", len(aps))
	return len(aps), nil
}

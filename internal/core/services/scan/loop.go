package scan

import (
	"context"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Run is the single writer of the registries. It handles queued frames and
// the maintenance ticks until ctx is done, then stops any running session.
func (c *Controller) Run(ctx context.Context) error {
	sweep := time.NewTicker(SweepInterval)
	defer sweep.Stop()
	cleanup := time.NewTicker(CleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.Stop()
		case q := <-c.queue:
			c.process(ctx, q)
		case <-sweep.C:
			now := c.now()
			if c.expired(now) {
				c.log.Info("scan duration expired")
				if err := c.Stop(); err != nil {
					c.log.Warn("failed to stop expired scan", "error", err)
				}
				continue
			}
			c.sweep(ctx, now)
		case <-cleanup.C:
			c.cleanup(c.now())
		}
	}
}

// process decodes and routes one frame. Frames captured in an earlier
// session are discarded. A panic while handling a frame is logged and
// counted as a drop.
func (c *Controller) process(ctx context.Context, q queuedFrame) {
	f := q.frame
	defer func() {
		if r := recover(); r != nil {
			c.dropped.Add(1)
			telemetry.FramesDropped.WithLabelValues(telemetry.DropPanic).Inc()
			c.log.Error("recovered from panic while handling frame", "panic", r, "length", len(f.Data))
		}
	}()

	obs, err := c.decoder.Decode(f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Mode.Active() || q.session != c.session.Load() {
		return
	}
	if err != nil {
		c.stats.Malformed++
		telemetry.FramesDropped.WithLabelValues(telemetry.DropMalformed).Inc()
		return
	}
	if obs.RSSI < c.state.MinRSSI {
		telemetry.FramesDropped.WithLabelValues(telemetry.DropFiltered).Inc()
		return
	}
	if obs.Channel == 0 {
		obs.Channel = c.state.Channel
	}
	if obs.Timestamp.IsZero() {
		obs.Timestamp = c.now()
	}

	c.count(obs)
	c.route(ctx, obs)
	telemetry.FramesProcessed.WithLabelValues(obs.Kind.String()).Inc()
}

func (c *Controller) count(obs domain.Observation) {
	if obs.Kind.IsManagement() {
		c.stats.Management++
	}
	switch {
	case obs.Kind == domain.KindBeacon:
		c.stats.Beacons++
	case obs.Kind == domain.KindProbeRequest:
		c.stats.ProbeRequests++
	case obs.Kind == domain.KindProbeResponse:
		c.stats.ProbeResponses++
	case obs.Kind == domain.KindData:
		c.stats.Data++
	case obs.Kind.IsAssociation():
		c.stats.AssociationFrames++
	}
}

func (c *Controller) expired(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Expired(now)
}

// sweep runs the associative reveal pass.
func (c *Controller) sweep(ctx context.Context, now time.Time) {
	_, span := c.tracer.Start(ctx, "correlation.Sweep")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Mode.Active() || !c.state.Features.ProbeSniffing {
		return
	}
	reveals := c.revealer.Sweep(now)
	for _, rv := range reveals {
		c.recordReveal(rv)
	}
	span.SetAttributes(
		attribute.Int("wreveal.reveals", len(reveals)),
		attribute.Int("wreveal.probe_cache", c.revealer.Cache().Len()),
	)
}

// cleanup drops stale clients and associations.
func (c *Controller) cleanup(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Mode.Active() {
		return
	}
	clients, assocs := c.tracker.RemoveStale(now.Add(-c.staleAfter))
	if clients > 0 || assocs > 0 {
		c.log.Debug("stale entries removed", "clients", clients, "associations", assocs)
	}
	c.updateGauges()
}

func (c *Controller) updateGauges() {
	telemetry.RegistrySize.WithLabelValues("access_points").Set(float64(c.tracker.APs.Len()))
	telemetry.RegistrySize.WithLabelValues("clients").Set(float64(c.tracker.Clients.Len()))
	telemetry.RegistrySize.WithLabelValues("associations").Set(float64(c.tracker.Index.Len()))
	telemetry.RegistrySize.WithLabelValues("probe_cache").Set(float64(c.revealer.Cache().Len()))
	telemetry.RegistrySize.WithLabelValues("ssids").Set(float64(c.ssids.Len()))
}

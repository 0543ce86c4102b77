package scan

import (
	"context"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/services/correlation"
	"github.com/lcalzada-xor/wreveal/internal/core/services/registry"
	"github.com/lcalzada-xor/wreveal/internal/telemetry"
)

// route applies one admitted observation. Callers hold c.mu.
func (c *Controller) route(ctx context.Context, obs domain.Observation) {
	f := c.state.Features

	c.observeClients(ctx, obs)

	switch {
	case obs.Kind == domain.KindBeacon, obs.Kind == domain.KindProbeResponse:
		c.handleAccessPoint(obs)
	case obs.Kind == domain.KindProbeRequest:
		if f.ProbeSniffing {
			c.handleProbe(obs)
		}
	case obs.Kind.IsAssociation():
		if f.AssociationTracking {
			c.handleAssociation(obs)
		}
	case obs.Kind == domain.KindDeauth, obs.Kind == domain.KindDisassoc:
		if f.AssociationTracking {
			c.handleDeparture(obs)
		}
	case obs.Kind == domain.KindData:
		if c.state.Mode == domain.ModeClientScan && f.AssociationTracking {
			c.inferAssociation(obs)
		}
	}
}

// validClient applies the station filter: never broadcast or zero, and
// with MAC filtering on, never multicast or locally administered.
func (c *Controller) validClient(mac domain.MAC) bool {
	if mac.IsUndirected() {
		return false
	}
	if c.state.Features.MACFiltering && (mac.IsMulticast() || mac.IsLocallyAdministered()) {
		return false
	}
	return true
}

// clientCandidates lists the station addresses a frame speaks for.
// Probe and association frames name their client in both modes; in client
// scan every other non-beacon frame contributes its addresses too.
func (c *Controller) clientCandidates(obs domain.Observation) []domain.MAC {
	f := c.state.Features
	clientScan := c.state.Mode == domain.ModeClientScan

	switch {
	case obs.Kind == domain.KindControl, obs.Kind == domain.KindBeacon, obs.Kind == domain.KindProbeResponse:
		return nil
	case obs.Kind == domain.KindProbeRequest && (f.ProbeSniffing || clientScan):
		return []domain.MAC{obs.Sender}
	case obs.Kind.IsAssociation() && (f.AssociationTracking || clientScan):
		mac, _ := obs.Client()
		return []domain.MAC{mac}
	case !clientScan:
		return nil
	case obs.Kind == domain.KindData:
		if mac, ok := obs.Client(); ok {
			return []domain.MAC{mac}
		}
		return nil
	}
	if obs.Sender == obs.Receiver {
		return []domain.MAC{obs.Sender}
	}
	return []domain.MAC{obs.Sender, obs.Receiver}
}

// observeClients folds the frame into the record of every station it names.
func (c *Controller) observeClients(ctx context.Context, obs domain.Observation) {
	for _, mac := range c.clientCandidates(obs) {
		if !c.validClient(mac) || mac == obs.BSSID {
			continue
		}
		if _, isAP := c.tracker.APs.Get(mac); isAP {
			continue
		}
		before := c.tracker.Clients.Len()
		cl, created := c.tracker.Client(ctx, mac, obs.Timestamp)
		if created && c.tracker.Clients.Len() == before {
			telemetry.Evictions.WithLabelValues("clients").Inc()
		}
		c.tracker.Clients.Update(cl, obs)
		c.stats.ClientPackets++
	}
}

// handleAccessPoint applies a beacon or probe response.
func (c *Controller) handleAccessPoint(obs domain.Observation) {
	bssid := obs.BSSID
	if bssid.IsUndirected() || bssid.IsMulticast() {
		return
	}

	before := c.tracker.APs.Len()
	ap, created := c.tracker.AccessPoint(bssid, obs.Timestamp)
	if created && c.tracker.APs.Len() == before {
		telemetry.Evictions.WithLabelValues("access_points").Inc()
	}
	c.tracker.APs.Update(ap, obs, c.state.Features.WPSDetection)

	src := registry.FromBeacon
	if obs.Kind == domain.KindProbeResponse {
		src = registry.FromProbeResponse
		if ap.Hidden {
			if rv, ok := c.revealer.RevealFromResponse(bssid, obs.Receiver, obs.SSID, obs.Timestamp); ok {
				c.recordReveal(rv)
			}
		}
	}
	if c.state.Features.SSIDTracking {
		c.ssids.Update(obs.SSID, src, bssid, bssid, obs.RSSI, ap.Channel, obs.Timestamp)
	}

	if created {
		c.log.Debug("access point discovered",
			"bssid", bssid.String(),
			"ssid", ap.DisplaySSID,
			"channel", ap.Channel,
			"encryption", ap.Encryption.String(),
			"rsn", ap.RSN.Summary())
		c.events.Publish(domain.Event{Type: domain.EventAPDiscovered, Timestamp: obs.Timestamp, Payload: ap.Clone()})
	}
}

// handleProbe records a probe request. The probe cache and SSID statistics
// see every probe; the client record only exists for admitted stations.
func (c *Controller) handleProbe(obs domain.Observation) {
	client := obs.Sender
	if client.IsUndirected() {
		return
	}
	if cl, ok := c.tracker.Clients.Get(client); ok {
		c.tracker.Clients.RecordProbe(cl, obs.SSID, obs.BSSID, obs.Timestamp)
	}
	if c.state.Features.SSIDTracking {
		c.ssids.Update(obs.SSID, registry.FromProbeRequest, client, obs.BSSID, obs.RSSI, obs.Channel, obs.Timestamp)
	}

	rv, ok := c.revealer.ObserveProbe(domain.ProbeEntry{
		Client:    client,
		SSID:      obs.SSID,
		Target:    obs.BSSID,
		RSSI:      obs.RSSI,
		Channel:   obs.Channel,
		Timestamp: obs.Timestamp,
	})
	if ok {
		c.recordReveal(rv)
	}
}

// handleAssociation links the client of an (re)association exchange.
func (c *Controller) handleAssociation(obs domain.Observation) {
	client, ok := obs.Client()
	bssid := obs.BSSID
	if !ok || bssid.IsUndirected() || client == bssid || !c.validClient(client) {
		return
	}
	if _, ok := c.tracker.Clients.Get(client); !ok {
		return
	}
	c.tracker.Link(client, bssid, obs.Timestamp)
	if ap, ok := c.tracker.APs.Get(bssid); ok {
		c.tracker.APs.Touch(ap, obs.Timestamp)
	}
}

// handleDeparture unlinks on deauthentication or disassociation, in either
// direction. A broadcast from the AP unlinks all of its clients. Client
// records are kept.
func (c *Controller) handleDeparture(obs domain.Observation) {
	bssid := obs.BSSID
	if bssid.IsUndirected() {
		return
	}
	if obs.Receiver.IsBroadcast() {
		if obs.Sender == bssid {
			if n := c.tracker.UnlinkAll(bssid); n > 0 {
				c.log.Debug("broadcast deauthentication", "bssid", bssid.String(), "clients", n)
			}
		}
		return
	}
	client := obs.Receiver
	if client == bssid {
		client = obs.Sender
	}
	c.tracker.Unlink(client, bssid)
}

// inferAssociation links the station of a data frame to the AP it talks
// to, provided that AP has been seen.
func (c *Controller) inferAssociation(obs domain.Observation) {
	client, ok := obs.Client()
	if !ok || !c.validClient(client) {
		return
	}
	bssid, ok := obs.AccessPoint()
	if !ok {
		return
	}
	if _, ok := c.tracker.APs.Get(bssid); !ok {
		return
	}
	if _, ok := c.tracker.Clients.Get(client); !ok {
		return
	}
	c.tracker.Confirm(client, bssid, obs.Timestamp)
}

func (c *Controller) recordReveal(rv correlation.Reveal) {
	c.stats.HiddenRevealed++
	telemetry.HiddenRevealed.WithLabelValues(string(rv.Source)).Inc()
	c.events.Publish(domain.Event{Type: domain.EventAPRevealed, Timestamp: rv.At, Payload: rv})
}

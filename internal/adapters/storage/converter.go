package storage

import (
	"fmt"
	"strings"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// toAccessPointModel converts a domain record to a database model.
// Associated clients are session state and are not stored.
func toAccessPointModel(sessionID string, ap domain.AccessPoint) AccessPointModel {
	m := AccessPointModel{
		BSSID:           ap.BSSID.String(),
		SessionID:       sessionID,
		SSID:            ap.SSID,
		DisplaySSID:     ap.DisplaySSID,
		OriginalSSIDLen: ap.OriginalSSIDLen,
		Hidden:          ap.Hidden,
		SSIDKnown:       ap.SSIDKnown,
		SSIDRevealed:    ap.SSIDRevealed,
		RevealedAt:      ap.RevealedAt,
		RevealSource:    string(ap.RevealSource),
		RSSI:            ap.RSSI,
		Channel:         ap.Channel,
		Encryption:      ap.Encryption.String(),
		Capability:      ap.Capability,
		BeaconInterval:  ap.BeaconInterval,
		VendorOUI:       ap.VendorOUI,
		WPSEnabled:      ap.WPS.Enabled,
		WPSVersion:      ap.WPS.Version,
		WPSState:        ap.WPS.State,
		WPSLocked:       ap.WPS.Locked,
		WPSDeviceName:   ap.WPS.DeviceName,
		WPSManufacturer: ap.WPS.Manufacturer,
		WPSModel:        ap.WPS.Model,
		FirstSeen:       ap.FirstSeen,
		LastSeen:        ap.LastSeen,
		PacketCount:     ap.PacketCount,
	}
	if ap.RSN != nil {
		m.HasRSN = true
		m.RSNGroupCipher = ap.RSN.GroupCipher
		m.RSNPairwise = strings.Join(ap.RSN.PairwiseCiphers, ",")
		m.RSNAKMs = strings.Join(ap.RSN.AKMs, ",")
		m.MFPRequired = ap.RSN.MFPRequired
		m.MFPCapable = ap.RSN.MFPCapable
	}
	return m
}

// toAccessPoint converts a database model to a domain record.
func toAccessPoint(m AccessPointModel) (domain.AccessPoint, error) {
	bssid, err := domain.ParseMAC(m.BSSID)
	if err != nil {
		return domain.AccessPoint{}, fmt.Errorf("stored access point: %w", err)
	}
	var ssid []byte
	if len(m.SSID) > 0 {
		ssid = append([]byte(nil), m.SSID...)
	}
	var rsn *domain.RSNDetails
	if m.HasRSN {
		rsn = &domain.RSNDetails{
			GroupCipher:     m.RSNGroupCipher,
			PairwiseCiphers: splitList(m.RSNPairwise),
			AKMs:            splitList(m.RSNAKMs),
			MFPRequired:     m.MFPRequired,
			MFPCapable:      m.MFPCapable,
		}
	}
	return domain.AccessPoint{
		BSSID:           bssid,
		SSID:            ssid,
		DisplaySSID:     m.DisplaySSID,
		OriginalSSIDLen: m.OriginalSSIDLen,
		Hidden:          m.Hidden,
		SSIDKnown:       m.SSIDKnown,
		SSIDRevealed:    m.SSIDRevealed,
		RevealedAt:      m.RevealedAt,
		RevealSource:    domain.RevealSource(m.RevealSource),
		RSSI:            m.RSSI,
		Channel:         m.Channel,
		Encryption:      domain.ParseEncryption(m.Encryption),
		RSN:             rsn,
		Capability:      m.Capability,
		BeaconInterval:  m.BeaconInterval,
		VendorOUI:       m.VendorOUI,
		WPS: domain.WPSInfo{
			Enabled:      m.WPSEnabled,
			Version:      m.WPSVersion,
			State:        m.WPSState,
			Locked:       m.WPSLocked,
			DeviceName:   m.WPSDeviceName,
			Manufacturer: m.WPSManufacturer,
			Model:        m.WPSModel,
		},
		FirstSeen:   m.FirstSeen,
		LastSeen:    m.LastSeen,
		PacketCount: m.PacketCount,
	}, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func toSessionModel(s domain.SessionSummary) SessionModel {
	return SessionModel{
		ID:                s.ID,
		Mode:              string(s.Mode),
		StartedAt:         s.StartedAt,
		EndedAt:           s.EndedAt,
		AccessPoints:      s.Counts.AccessPoints,
		Hidden:            s.Counts.Hidden,
		Revealed:          s.Counts.Revealed,
		Clients:           s.Counts.Clients,
		Associations:      s.Counts.Associations,
		Probes:            s.Counts.Probes,
		ManagementFrames:  s.Stats.Management,
		Beacons:           s.Stats.Beacons,
		ProbeRequests:     s.Stats.ProbeRequests,
		ProbeResponses:    s.Stats.ProbeResponses,
		DataFrames:        s.Stats.Data,
		AssociationFrames: s.Stats.AssociationFrames,
		HiddenRevealed:    s.Stats.HiddenRevealed,
		Dropped:           s.Stats.Dropped,
		Malformed:         s.Stats.Malformed,
	}
}

func toSessionSummary(m SessionModel) domain.SessionSummary {
	return domain.SessionSummary{
		ID:        m.ID,
		Mode:      domain.ScanMode(m.Mode),
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
		Counts: domain.Counts{
			AccessPoints: m.AccessPoints,
			Hidden:       m.Hidden,
			Revealed:     m.Revealed,
			Clients:      m.Clients,
			Associations: m.Associations,
			Probes:       m.Probes,
		},
		Stats: domain.Statistics{
			Management:        m.ManagementFrames,
			Beacons:           m.Beacons,
			ProbeRequests:     m.ProbeRequests,
			ProbeResponses:    m.ProbeResponses,
			Data:              m.DataFrames,
			AssociationFrames: m.AssociationFrames,
			HiddenRevealed:    m.HiddenRevealed,
			Dropped:           m.Dropped,
			Malformed:         m.Malformed,
		},
	}
}

package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// ScanHandler drives the scan state machine and its settings.
type ScanHandler struct {
	Service ports.ScanService
}

func NewScanHandler(service ports.ScanService) *ScanHandler {
	return &ScanHandler{Service: service}
}

type statusResponse struct {
	State      domain.ScanState  `json:"state"`
	Counts     domain.Counts     `json:"counts"`
	Statistics domain.Statistics `json:"statistics"`
}

// HandleStatus returns the session state with counts and frame counters.
func (h *ScanHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		State:      h.Service.Status(),
		Counts:     h.Service.Counts(),
		Statistics: h.Service.Statistics(),
	})
}

// HandleStart starts a session in the requested mode. Starting "idle"
// stops the running session.
func (h *ScanHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decode(w, r, &req) {
		return
	}
	mode, err := domain.ParseScanMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Service.Start(mode); err != nil {
		log.Printf("Start %s failed: %v", mode, err)
		writeError(w, controlStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status())
}

// HandleStop ends the running session.
func (h *ScanHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Stop(); err != nil {
		writeError(w, controlStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status())
}

type settingsRequest struct {
	DurationSeconds *int  `json:"duration_seconds"`
	HopIntervalMs   *int  `json:"hop_interval_ms"`
	MinRSSI         *int  `json:"min_rssi"`
	Channels        []int `json:"channels"`
}

// HandleSettings applies the given settings in order. The first invalid
// value aborts the request; settings applied before it are kept.
func (h *ScanHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decode(w, r, &req) {
		return
	}

	var steps []func() error
	if req.DurationSeconds != nil {
		d := time.Duration(*req.DurationSeconds) * time.Second
		steps = append(steps, func() error { return h.Service.SetDuration(d) })
	}
	if req.HopIntervalMs != nil {
		d := time.Duration(*req.HopIntervalMs) * time.Millisecond
		steps = append(steps, func() error { return h.Service.SetHopInterval(d) })
	}
	if req.MinRSSI != nil {
		rssi := *req.MinRSSI
		steps = append(steps, func() error { return h.Service.SetMinRSSI(rssi) })
	}
	if req.Channels != nil {
		steps = append(steps, func() error { return h.Service.SetChannels(req.Channels) })
	}

	var err error
	for _, step := range steps {
		if err = step(); err != nil {
			break
		}
	}
	if err != nil {
		writeError(w, controlStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status())
}

// HandleFeature toggles the feature named in the path.
func (h *ScanHandler) HandleFeature(w http.ResponseWriter, r *http.Request) {
	name := domain.Feature(mux.Vars(r)["name"])
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.SetFeature(name, req.Enabled); err != nil {
		writeError(w, controlStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status().Features)
}

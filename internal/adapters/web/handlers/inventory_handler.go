package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// InventoryHandler serves the registries.
type InventoryHandler struct {
	Service ports.ScanService
}

func NewInventoryHandler(service ports.ScanService) *InventoryHandler {
	return &InventoryHandler{Service: service}
}

// HandleAccessPoints lists APs. ?hidden=true keeps hidden ones only,
// ?revealed=true keeps revealed ones only.
func (h *InventoryHandler) HandleAccessPoints(w http.ResponseWriter, r *http.Request) {
	aps := h.Service.AccessPoints()
	q := r.URL.Query()
	hidden, _ := strconv.ParseBool(q.Get("hidden"))
	revealed, _ := strconv.ParseBool(q.Get("revealed"))
	if hidden || revealed {
		filtered := aps[:0]
		for _, ap := range aps {
			if hidden && !ap.Hidden {
				continue
			}
			if revealed && !ap.SSIDRevealed {
				continue
			}
			filtered = append(filtered, ap)
		}
		aps = filtered
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_points": aps,
		"total":         len(aps),
	})
}

// HandleAccessPoint returns one AP by BSSID.
func (h *InventoryHandler) HandleAccessPoint(w http.ResponseWriter, r *http.Request) {
	bssid, err := domain.ParseMAC(mux.Vars(r)["bssid"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ap, ok := h.Service.AccessPoint(bssid)
	if !ok {
		writeError(w, http.StatusNotFound, "access point not found")
		return
	}
	writeJSON(w, http.StatusOK, ap)
}

func (h *InventoryHandler) HandleClients(w http.ResponseWriter, r *http.Request) {
	clients := h.Service.Clients()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clients": clients,
		"total":   len(clients),
	})
}

func (h *InventoryHandler) HandleAssociations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"associations": h.Service.Associations(),
	})
}

func (h *InventoryHandler) HandleProbes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"probes": h.Service.ProbeCache(),
	})
}

func (h *InventoryHandler) HandleSSIDs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ssids": h.Service.SSIDStats(),
	})
}

package handlers

import (
	"log"
	"net/http"

	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// SnapshotHandler persists and restores the AP table.
type SnapshotHandler struct {
	Service ports.ScanService
}

func NewSnapshotHandler(service ports.ScanService) *SnapshotHandler {
	return &SnapshotHandler{Service: service}
}

func (h *SnapshotHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.SaveSnapshot(r.Context()); err != nil {
		log.Printf("Snapshot save failed: %v", err)
		writeError(w, controlStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "saved",
		"access_points": h.Service.Counts().AccessPoints,
	})
}

func (h *SnapshotHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.LoadSnapshot(r.Context())
	if err != nil {
		log.Printf("Snapshot load failed: %v", err)
		writeError(w, controlStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "loaded",
		"loaded": n,
	})
}

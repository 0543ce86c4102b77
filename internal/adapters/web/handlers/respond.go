// Package handlers exposes the scan service over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lcalzada-xor/wreveal/internal/core/services/scan"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// controlStatus maps a control error to its HTTP status.
func controlStatus(err error) int {
	switch {
	case errors.Is(err, scan.ErrInvalidMode),
		errors.Is(err, scan.ErrInvalidHopInterval),
		errors.Is(err, scan.ErrInvalidDuration),
		errors.Is(err, scan.ErrInvalidChannel),
		errors.Is(err, scan.ErrInvalidRSSI):
		return http.StatusBadRequest
	case errors.Is(err, scan.ErrUnknownFeature):
		return http.StatusNotFound
	case errors.Is(err, scan.ErrNoSnapshotStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

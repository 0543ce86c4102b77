package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wreveal/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(s.Auth.Middleware)

	protected.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	protected.HandleFunc("/ws", s.Hub.HandleWebSocket).Methods(http.MethodGet)

	api := protected.PathPrefix("/api").Subrouter()

	// Queries
	api.HandleFunc("/status", s.ScanHandler.HandleStatus).Methods(http.MethodGet)
	api.HandleFunc("/access-points", s.InventoryHandler.HandleAccessPoints).Methods(http.MethodGet)
	api.HandleFunc("/access-points/{bssid}", s.InventoryHandler.HandleAccessPoint).Methods(http.MethodGet)
	api.HandleFunc("/clients", s.InventoryHandler.HandleClients).Methods(http.MethodGet)
	api.HandleFunc("/associations", s.InventoryHandler.HandleAssociations).Methods(http.MethodGet)
	api.HandleFunc("/probes", s.InventoryHandler.HandleProbes).Methods(http.MethodGet)
	api.HandleFunc("/ssids", s.InventoryHandler.HandleSSIDs).Methods(http.MethodGet)
	api.HandleFunc("/report", s.ReportHandler.HandleReport).Methods(http.MethodGet)

	// Controls
	control := api.NewRoute().Subrouter()
	control.Use(middleware.RateLimitMiddleware(s.controlLimiter))
	control.HandleFunc("/scan/start", s.ScanHandler.HandleStart).Methods(http.MethodPost)
	control.HandleFunc("/scan/stop", s.ScanHandler.HandleStop).Methods(http.MethodPost)
	control.HandleFunc("/settings", s.ScanHandler.HandleSettings).Methods(http.MethodPut)
	control.HandleFunc("/features/{name}", s.ScanHandler.HandleFeature).Methods(http.MethodPut)
	control.HandleFunc("/snapshot", s.SnapshotHandler.HandleSave).Methods(http.MethodPost)
	control.HandleFunc("/snapshot/load", s.SnapshotHandler.HandleLoad).Methods(http.MethodPost)

	return r
}

// Package server wires the HTTP API, the event stream and /metrics.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/adapters/reporting"
	"github.com/lcalzada-xor/wreveal/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/wreveal/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/wreveal/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the server.
type Options struct {
	Addr           string
	TokenHash      string // bcrypt hash; empty disables auth
	AllowedOrigins []string
	ControlLimit   int // control requests per minute and client
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr    string
	Service ports.ScanService
	Hub     *websocket.Hub
	Auth    *middleware.TokenAuth

	ScanHandler      *handlers.ScanHandler
	InventoryHandler *handlers.InventoryHandler
	SnapshotHandler  *handlers.SnapshotHandler
	ReportHandler    *handlers.ReportHandler

	controlLimiter *middleware.RateLimiter
	srv            *http.Server
}

// NewServer creates a new web server. It fails only on a malformed token
// hash.
func NewServer(opts Options, service ports.ScanService, pdf *reporting.PDFExporter) (*Server, error) {
	auth, err := middleware.NewTokenAuth(opts.TokenHash)
	if err != nil {
		return nil, err
	}
	limit := opts.ControlLimit
	if limit <= 0 {
		limit = 60
	}
	return &Server{
		Addr:             opts.Addr,
		Service:          service,
		Hub:              websocket.NewHub(service, opts.AllowedOrigins),
		Auth:             auth,
		ScanHandler:      handlers.NewScanHandler(service),
		InventoryHandler: handlers.NewInventoryHandler(service),
		SnapshotHandler:  handlers.NewSnapshotHandler(service),
		ReportHandler:    handlers.NewReportHandler(service, pdf),
		controlLimiter:   middleware.NewRateLimiter(limit, time.Minute),
	}, nil
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(SetupRoutes(s), "wreveal-server")
}

// Run serves until ctx is done. The hub runs alongside and stops with it.
func (s *Server) Run(ctx context.Context) error {
	go s.Hub.Run(ctx)

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

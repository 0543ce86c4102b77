// Package app wires the adapters around the scan controller.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/adapters/fingerprint"
	"github.com/lcalzada-xor/wreveal/internal/adapters/reporting"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/capture"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/driver"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/hopping"
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/parser"
	"github.com/lcalzada-xor/wreveal/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/wreveal/internal/adapters/web/server"
	"github.com/lcalzada-xor/wreveal/internal/config"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
	"github.com/lcalzada-xor/wreveal/internal/core/services/scan"
	"github.com/lcalzada-xor/wreveal/internal/mock"
	"github.com/lcalzada-xor/wreveal/internal/telemetry"
)

// Version is reported in traces.
var Version = "dev"

const shutdownTimeout = 5 * time.Second

// Application holds the core components of the application.
type Application struct {
	Config     *config.Config
	Controller *scan.Controller
	WebServer  *webserver.Server
	Store      *storage.SQLiteAdapter
	VendorRepo fingerprint.VendorRepository
	Source     ports.FrameSource
	Recorder   *capture.Recorder

	log            *slog.Logger
	monitor        *driver.MonitorSetup
	monitorEnabled bool
	shutdownTracer func(context.Context) error
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &Application{Config: cfg, log: logger}

	if err := app.bootstrap(); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()
	if app.Config.Trace {
		shutdown, err := telemetry.InitTracer(Version)
		if err != nil {
			return fmt.Errorf("tracer: %w", err)
		}
		app.shutdownTracer = shutdown
	}

	if err := app.initStorage(); err != nil {
		return err
	}
	app.VendorRepo = fingerprint.Open(fingerprint.Options{
		DBPath:  app.Config.OUIDBPath,
		OUIFile: app.Config.OUIFile,
	})

	// 2. Frame source and radio
	if err := app.initSource(); err != nil {
		return err
	}

	// 3. Controller
	if err := app.initController(); err != nil {
		return err
	}

	// 4. Servers
	srv, err := webserver.NewServer(webserver.Options{
		Addr:           app.Config.Addr,
		TokenHash:      app.Config.TokenHash,
		AllowedOrigins: app.Config.AllowedOrigins,
	}, app.Controller, reporting.NewPDFExporter())
	if err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	app.WebServer = srv
	app.Controller.Subscribe(srv.Hub)
	app.Controller.Subscribe(eventLogger{log: app.log})
	return nil
}

func (app *Application) initStorage() error {
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}
	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init snapshot storage: %w", err)
	}
	app.Store = store
	return nil
}

// live reports whether frames come from a real radio.
func (app *Application) live() bool {
	return app.Config.MockScenario == "" && app.Config.ReplayPath == ""
}

func (app *Application) initSource() error {
	cfg := app.Config
	switch {
	case cfg.MockScenario != "":
		log.Printf("Mock Mode Active: simulating scenario %q", cfg.MockScenario)
		app.Source = mock.NewSource(cfg.MockScenario, time.Now().UnixNano())
		return nil
	case cfg.ReplayPath != "":
		log.Printf("Replaying frames from %s", cfg.ReplayPath)
		src := capture.NewFileSource(cfg.ReplayPath)
		src.Pace = cfg.ReplayPace
		app.Source = src
		return nil
	}

	if err := app.prepareInterface(); err != nil {
		return err
	}

	src := capture.NewPcapSource(cfg.Interface, cfg.RFMon)
	if cfg.PcapPath != "" {
		rec, err := capture.NewRecorder(cfg.PcapPath)
		if err != nil {
			return err
		}
		app.Recorder = rec
		src.Recorder = rec
	}
	app.Source = src
	return nil
}

// prepareInterface puts the radio into monitor mode when asked to, verifies
// the mode and narrows the hop plan to the channels the radio supports.
func (app *Application) prepareInterface() error {
	cfg := app.Config
	if cfg.SetupMonitor {
		channel := 0
		if len(cfg.Channels) > 0 {
			channel = cfg.Channels[0]
		}
		app.monitor = driver.NewMonitorSetup()
		if err := app.monitor.Enable(cfg.Interface, channel); err != nil {
			return fmt.Errorf("failed to enable monitor mode on %s: %w", cfg.Interface, err)
		}
		app.monitorEnabled = true
	}

	ifi, err := driver.NewInspector().CheckMonitor(cfg.Interface)
	switch {
	case errors.Is(err, driver.ErrNotMonitor) && !cfg.RFMon:
		return err
	case err != nil:
		// nl80211 may be unavailable (containers, non-Linux); libpcap
		// still rejects a non-monitor link type at activation
		app.log.Warn("interface check skipped", "interface", cfg.Interface, "error", err)
	default:
		app.log.Info("monitor interface ready", "interface", ifi.Name, "phy", ifi.PHY, "channel", ifi.Channel)
	}

	caps, err := driver.NewProber().Capabilities(cfg.Interface)
	if err != nil {
		app.log.Warn("channel capabilities unavailable", "error", err)
		return nil
	}
	if usable := caps.Filter(cfg.Channels); len(usable) > 0 && len(usable) < len(cfg.Channels) {
		app.log.Info("hop plan narrowed to supported channels", "channels", usable)
		cfg.Channels = usable
	}
	return nil
}

func (app *Application) initController() error {
	cfg := app.Config
	var newHopper ports.HopperFactory
	if app.live() {
		switcher := hopping.NewLinuxChannelSwitcher()
		newHopper = func(channels []int, delay time.Duration, onHop func(int, time.Time)) ports.ChannelHopper {
			return hopping.NewHopper(cfg.Interface, channels, delay, switcher, onHop)
		}
	}

	ctrl, err := scan.NewController(scan.Config{
		Interface:   cfg.Interface,
		Channels:    cfg.Channels,
		HopInterval: cfg.HopInterval,
		Duration:    cfg.Duration,
		MinRSSI:     cfg.MinRSSI,
		Features:    cfg.Features,
		QueueSize:   cfg.QueueSize,
	}, scan.Deps{
		Decoder:   parser.NewDecoder(),
		NewHopper: newHopper,
		Vendors:   app.VendorRepo,
		Store:     app.Store,
		Logger:    app.log,
	})
	if err != nil {
		return fmt.Errorf("scan controller: %w", err)
	}
	app.Controller = ctrl
	return nil
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	app.log.Info("Starting wreveal components...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrlDone := make(chan error, 1)
	go func() { ctrlDone <- app.Controller.Run(ctx) }()

	errChan := make(chan error, 2)
	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	if app.Config.AutoStart.Active() {
		if err := app.Controller.Start(app.Config.AutoStart); err != nil {
			cancel()
			<-ctrlDone
			app.cleanup()
			return fmt.Errorf("auto start: %w", err)
		}
	}

	// A replay can wait for the controller; a radio cannot.
	enqueue := func(f domain.Frame) { app.Controller.Enqueue(f) }
	if app.Config.ReplayPath != "" && app.Config.MockScenario == "" {
		enqueue = func(f domain.Frame) { app.Controller.EnqueueWait(ctx, f) }
	}

	go func() {
		err := app.Source.Run(ctx, enqueue)
		if err != nil {
			errChan <- fmt.Errorf("capture error: %w", err)
			return
		}
		if ctx.Err() == nil {
			app.log.Info("frame source exhausted")
		}
	}()

	app.log.Info("wreveal ready. Press Ctrl+C to terminate.")

	var runErr error
	select {
	case <-ctx.Done():
		app.log.Info("Termination signal received")
	case runErr = <-errChan:
	}
	cancel()

	if err := <-ctrlDone; err != nil {
		app.log.Warn("controller stop failed", "error", err)
	}
	app.persist()
	app.cleanup()
	return runErr
}

// persist saves the AP table of the last session.
func (app *Application) persist() {
	if app.Store == nil || app.Controller.Counts().AccessPoints == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Controller.SaveSnapshot(ctx); err != nil {
		app.log.Warn("snapshot save failed", "error", err)
	}
}

func (app *Application) cleanup() {
	app.log.Info("Cleaning up resources...")

	if app.Recorder != nil {
		if err := app.Recorder.Close(); err != nil {
			app.log.Warn("pcap close failed", "error", err)
		} else {
			app.log.Info("capture saved", "path", app.Config.PcapPath, "packets", app.Recorder.Packets())
		}
	}
	if app.VendorRepo != nil {
		app.VendorRepo.Close()
	}
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			app.log.Warn("storage close failed", "error", err)
		}
	}
	if app.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.shutdownTracer(ctx); err != nil {
			app.log.Warn("tracer shutdown failed", "error", err)
		}
	}
	app.RestoreNetwork()
}

// RestoreNetwork reverts the monitor mode switch made at startup.
func (app *Application) RestoreNetwork() {
	if !app.monitorEnabled {
		return
	}
	if err := app.monitor.Disable(app.Config.Interface); err != nil {
		log.Printf("Error restoring managed mode: %v", err)
	}
	app.monitorEnabled = false
}

// eventLogger writes controller events to the structured log.
type eventLogger struct {
	log *slog.Logger
}

func (l eventLogger) Publish(e domain.Event) {
	switch e.Type {
	case domain.EventAPRevealed:
		l.log.Info("hidden SSID revealed", "event", e.Payload)
	case domain.EventScanStarted, domain.EventScanStopped:
		l.log.Info(string(e.Type), "event", e.Payload)
	}
}

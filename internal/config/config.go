package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Interface      string
	Addr           string
	DBPath         string
	OUIDBPath      string
	OUIFile        string
	PcapPath       string // record captured frames here when set
	ReplayPath     string // read frames from this pcap instead of the radio
	ReplayPace     bool   // keep the recorded spacing while replaying
	MockScenario   string // simulate a radio environment when set
	Debug          bool
	Trace          bool
	SetupMonitor   bool
	RFMon          bool
	TokenHash      string
	AllowedOrigins []string

	AutoStart   domain.ScanMode
	Channels    []int
	HopInterval time.Duration
	Duration    time.Duration
	MinRSSI     int
	QueueSize   int
	Features    domain.Features
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load(args []string) (*Config, error) {
	return load(args, os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	env := envReader{lookup: lookup}
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Interface = env.str("WREVEAL_INTERFACE", "wlan0")
	cfg.Addr = env.str("WREVEAL_ADDR", ":8080")
	cfg.DBPath = env.str("WREVEAL_DB", "")
	cfg.OUIDBPath = env.str("WREVEAL_OUI_DB", "data/oui/ieee_oui.db")
	cfg.OUIFile = env.str("WREVEAL_OUI_FILE", "")
	cfg.PcapPath = env.str("WREVEAL_PCAP", "")
	cfg.ReplayPath = env.str("WREVEAL_REPLAY", "")
	cfg.ReplayPace = env.bool("WREVEAL_REPLAY_PACE", false)
	cfg.MockScenario = env.str("WREVEAL_MOCK", "")
	cfg.Debug = env.bool("WREVEAL_DEBUG", false)
	cfg.Trace = env.bool("WREVEAL_TRACE", false)
	cfg.SetupMonitor = env.bool("WREVEAL_SETUP_MONITOR", false)
	cfg.RFMon = env.bool("WREVEAL_RFMON", false)
	cfg.TokenHash = env.str("WREVEAL_TOKEN_HASH", "")
	origins := env.str("WREVEAL_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")
	autoStart := env.str("WREVEAL_AUTOSTART", "")
	channels := env.str("WREVEAL_CHANNELS", "")
	cfg.HopInterval = env.duration("WREVEAL_HOP_INTERVAL", 250*time.Millisecond)
	cfg.Duration = env.duration("WREVEAL_DURATION", 0)
	cfg.MinRSSI = env.int("WREVEAL_MIN_RSSI", domain.MinRSSI)
	cfg.QueueSize = env.int("WREVEAL_QUEUE", 4096)
	cfg.Features = domain.DefaultFeatures()
	features := env.str("WREVEAL_FEATURES", "")

	// Command Line Flags (Override Env)
	fs := flag.NewFlagSet("wreveal", flag.ContinueOnError)
	fs.StringVar(&cfg.Interface, "i", cfg.Interface, "Wireless interface in monitor mode")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite snapshot database (default ~/.wreveal/wreveal.db)")
	fs.StringVar(&cfg.OUIDBPath, "oui-db", cfg.OUIDBPath, "Path to IEEE OUI SQLite database")
	fs.StringVar(&cfg.OUIFile, "oui-file", cfg.OUIFile, "Path to a text OUI list (OUI<TAB>vendor)")
	fs.StringVar(&cfg.PcapPath, "pcap", cfg.PcapPath, "Path to save PCAP file (empty to disable)")
	fs.StringVar(&cfg.ReplayPath, "replay", cfg.ReplayPath, "Replay frames from a PCAP file instead of capturing")
	fs.BoolVar(&cfg.ReplayPace, "replay-pace", cfg.ReplayPace, "Replay at the recorded speed instead of as fast as possible")
	fs.StringVar(&cfg.MockScenario, "mock", cfg.MockScenario, "Simulate a radio environment: basic, crowded or hidden")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Export OpenTelemetry spans to stdout")
	fs.BoolVar(&cfg.SetupMonitor, "setup-monitor", cfg.SetupMonitor, "Switch the interface to monitor mode at startup and back on exit")
	fs.BoolVar(&cfg.RFMon, "rfmon", cfg.RFMon, "Request rfmon on the pcap handle")
	fs.StringVar(&cfg.TokenHash, "token-hash", cfg.TokenHash, "bcrypt hash of the API bearer token (empty disables auth)")
	fs.StringVar(&origins, "origins", origins, "Allowed WebSocket origins (comma separated)")
	fs.StringVar(&autoStart, "start", autoStart, "Start a session at launch: ap_scan or client_scan")
	fs.StringVar(&channels, "channels", channels, "Hop plan (comma separated, default 1-13)")
	fs.DurationVar(&cfg.HopInterval, "hop", cfg.HopInterval, "Channel hop interval")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Scan duration (0 runs until stopped)")
	fs.IntVar(&cfg.MinRSSI, "min-rssi", cfg.MinRSSI, "Ignore frames weaker than this (dBm)")
	fs.IntVar(&cfg.QueueSize, "queue", cfg.QueueSize, "Frame queue capacity")
	fs.StringVar(&features, "features", features, "Feature overrides, e.g. mac_filtering=false,probe_debug=true")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = getDefaultDBPath()
	}
	cfg.AllowedOrigins = splitList(origins)

	var err error
	if cfg.AutoStart, err = domain.ParseScanMode(autoStart); err != nil {
		return nil, err
	}
	if cfg.Channels, err = parseChannels(channels); err != nil {
		return nil, err
	}
	if err := applyFeatures(&cfg.Features, features); err != nil {
		return nil, err
	}
	if cfg.QueueSize <= 0 {
		return nil, fmt.Errorf("queue size must be positive, got %d", cfg.QueueSize)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseChannels(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return domain.DefaultChannels(), nil
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		ch, err := strconv.Atoi(p)
		if err != nil || !domain.ValidChannel(ch) {
			return nil, fmt.Errorf("invalid channel %q", p)
		}
		out = append(out, ch)
	}
	return out, nil
}

// applyFeatures parses "name=bool" pairs. A bare name enables the feature.
func applyFeatures(f *domain.Features, s string) error {
	for _, p := range splitList(s) {
		name, value, found := strings.Cut(p, "=")
		on := true
		if found {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("feature %s: %w", name, err)
			}
			on = b
		}
		if !f.Set(domain.Feature(strings.TrimSpace(name)), on) {
			return fmt.Errorf("unknown feature %q", name)
		}
	}
	return nil
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) str(key, fallback string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return fallback
}

func (e envReader) bool(key string, fallback bool) bool {
	if value, ok := e.lookup(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func (e envReader) int(key string, fallback int) int {
	if value, ok := e.lookup(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func (e envReader) duration(key string, fallback time.Duration) time.Duration {
	if value, ok := e.lookup(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "wreveal.db"
	}

	dir := filepath.Join(home, ".wreveal")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .wreveal directory, using current dir: %v", err)
		return "wreveal.db"
	}
	return filepath.Join(dir, "wreveal.db")
}

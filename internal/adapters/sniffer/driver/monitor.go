package driver

import (
	"bytes"
	"fmt"
	"log"
	"strconv"
)

// MonitorSetup switches an interface in and out of monitor mode with ip and iw.
type MonitorSetup struct {
	run Runner
}

// NewMonitorSetup returns a MonitorSetup that shells out to ip and iw.
func NewMonitorSetup() *MonitorSetup {
	return &MonitorSetup{run: execRunner}
}

// Enable puts iface into monitor mode and tunes it to channel when positive.
func (m *MonitorSetup) Enable(iface string, channel int) error {
	log.Printf("Enabling monitor mode on %s...", iface)
	if err := m.cmd("ip", "link", "set", iface, "down"); err != nil {
		return err
	}
	if err := m.cmd("iw", iface, "set", "type", "monitor"); err != nil {
		log.Printf("Hint: 'Device or resource busy' usually means NetworkManager or wpa_supplicant owns %s", iface)
		return err
	}
	if err := m.cmd("ip", "link", "set", iface, "up"); err != nil {
		return err
	}
	if channel > 0 {
		// the hopper retunes anyway; a failure here is not fatal
		if err := m.cmd("iw", iface, "set", "channel", strconv.Itoa(channel)); err != nil {
			log.Printf("Initial channel %d on %s not set: %v", channel, iface, err)
		}
	}
	return nil
}

// Disable restores managed mode. Every step is attempted; the first error
// is returned.
func (m *MonitorSetup) Disable(iface string) error {
	log.Printf("Restoring managed mode on %s...", iface)
	var first error
	for _, args := range [][]string{
		{"ip", "link", "set", iface, "down"},
		{"iw", iface, "set", "type", "managed"},
		{"ip", "link", "set", iface, "up"},
	} {
		if err := m.cmd(args[0], args[1:]...); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MonitorSetup) cmd(name string, args ...string) error {
	out, err := m.run(name, args...)
	if err != nil {
		return fmt.Errorf("%s %v: %w (%s)", name, args, err, bytes.TrimSpace(out))
	}
	return nil
}

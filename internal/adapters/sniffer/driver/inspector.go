// Package driver inspects wireless interfaces before capture starts.
package driver

import (
	"errors"
	"fmt"
	"net"

	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/dot11"
	"github.com/mdlayher/wifi"
)

var (
	// ErrInterfaceNotFound is returned when no wireless interface has the
	// requested name.
	ErrInterfaceNotFound = errors.New("wireless interface not found")
	// ErrNotMonitor is returned when the interface is not in monitor mode.
	ErrNotMonitor = errors.New("interface is not in monitor mode")
)

// Interface describes one wireless interface as reported by nl80211.
type Interface struct {
	Name         string
	Index        int
	PHY          int
	HardwareAddr net.HardwareAddr
	Type         string
	Monitor      bool
	Frequency    int
	Channel      int
}

// wifiClient is the subset of *wifi.Client the inspector uses.
type wifiClient interface {
	Interfaces() ([]*wifi.Interface, error)
	Close() error
}

// Inspector queries nl80211 for interface state.
type Inspector struct {
	open func() (wifiClient, error)
}

// NewInspector returns an Inspector backed by a fresh nl80211 client per call.
func NewInspector() *Inspector {
	return &Inspector{open: func() (wifiClient, error) { return wifi.New() }}
}

// Interfaces lists the wireless interfaces known to the kernel.
func (i *Inspector) Interfaces() ([]Interface, error) {
	c, err := i.open()
	if err != nil {
		return nil, fmt.Errorf("open nl80211: %w", err)
	}
	defer c.Close()

	ifis, err := c.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	out := make([]Interface, 0, len(ifis))
	for _, ifi := range ifis {
		// nl80211 also reports P2P devices without a netdev name
		if ifi.Name == "" {
			continue
		}
		out = append(out, fromWifi(ifi))
	}
	return out, nil
}

// Lookup returns the interface with the given name.
func (i *Inspector) Lookup(name string) (Interface, error) {
	ifis, err := i.Interfaces()
	if err != nil {
		return Interface{}, err
	}
	for _, ifi := range ifis {
		if ifi.Name == name {
			return ifi, nil
		}
	}
	return Interface{}, fmt.Errorf("%w: %s", ErrInterfaceNotFound, name)
}

// CheckMonitor verifies that name exists and is in monitor mode.
func (i *Inspector) CheckMonitor(name string) (Interface, error) {
	ifi, err := i.Lookup(name)
	if err != nil {
		return Interface{}, err
	}
	if !ifi.Monitor {
		return ifi, fmt.Errorf("%w: %s is in %s mode", ErrNotMonitor, name, ifi.Type)
	}
	return ifi, nil
}

func fromWifi(ifi *wifi.Interface) Interface {
	return Interface{
		Name:         ifi.Name,
		Index:        ifi.Index,
		PHY:          ifi.PHY,
		HardwareAddr: ifi.HardwareAddr,
		Type:         ifi.Type.String(),
		Monitor:      ifi.Type == wifi.InterfaceTypeMonitor,
		Frequency:    ifi.Frequency,
		Channel:      dot11.FrequencyToChannel(ifi.Frequency),
	}
}

package capture

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/google/gopacket/pcapgo"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// readTimeout bounds how long a live read blocks, so cancellation is seen.
const readTimeout = 500 * time.Millisecond

// PcapSource captures live from a monitor-mode interface.
type PcapSource struct {
	Interface string
	// RFMon asks libpcap to switch the interface into monitor mode.
	RFMon bool
	// Recorder, when set, receives every packet before decoding.
	Recorder *Recorder
}

// NewPcapSource creates a live source on iface.
func NewPcapSource(iface string, rfmon bool) *PcapSource {
	return &PcapSource{Interface: iface, RFMon: rfmon}
}

// Run captures until ctx is cancelled.
func (s *PcapSource) Run(ctx context.Context, fn func(domain.Frame)) error {
	inactive, err := pcap.NewInactiveHandle(s.Interface)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Interface, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(DefaultSnapLen); err != nil {
		return fmt.Errorf("set snaplen: %w", err)
	}
	if err := inactive.SetPromisc(true); err != nil {
		return fmt.Errorf("set promiscuous: %w", err)
	}
	if s.RFMon {
		if err := inactive.SetRFMon(true); err != nil {
			return fmt.Errorf("set rfmon: %w", err)
		}
	}
	if err := inactive.SetTimeout(readTimeout); err != nil {
		return fmt.Errorf("set timeout: %w", err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return fmt.Errorf("activate %s: %w", s.Interface, err)
	}
	defer handle.Close()

	if !supported(handle.LinkType()) {
		return fmt.Errorf("%w: %s delivers %s", ErrNotMonitor, s.Interface, handle.LinkType())
	}

	log.Printf("Capture started on %s (link type %s)", s.Interface, handle.LinkType())
	source := gopacket.NewPacketSource(handle, handle.LinkType())
	return pump(ctx, source, s.Interface, s.Recorder, fn)
}

// FileSource replays a pcap file. Replayed frames are stamped with the
// time they are delivered, so ages measured against the controller clock
// stay meaningful; the recorded timestamps only drive pacing.
type FileSource struct {
	Path string
	// Pace keeps the recorded spacing between frames. Otherwise frames are
	// delivered as fast as the consumer takes them.
	Pace bool
	// Clock stamps delivered frames; nil means time.Now.
	Clock func() time.Time
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Run replays the file until its end or until ctx is cancelled.
func (s *FileSource) Run(ctx context.Context, fn func(domain.Frame)) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("open capture file: %w", err)
	}
	defer f.Close()

	reader, err := pcapgo.NewReader(f)
	if err != nil {
		return fmt.Errorf("read capture header: %w", err)
	}
	if !supported(reader.LinkType()) {
		return fmt.Errorf("%w: %s", ErrUnsupportedLinkType, reader.LinkType())
	}

	now := s.Clock
	if now == nil {
		now = time.Now
	}
	var last time.Time
	deliver := func(fr domain.Frame) {
		recorded := fr.Timestamp
		if s.Pace && !last.IsZero() && !sleep(ctx, recorded.Sub(last)) {
			return
		}
		last = recorded
		fr.Timestamp = now()
		fn(fr)
	}

	source := gopacket.NewPacketSource(reader, reader.LinkType())
	return pump(ctx, source, "file:"+s.Path, nil, deliver)
}

// sleep waits d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// pump moves packets from source to fn until the source closes or ctx ends.
func pump(ctx context.Context, source *gopacket.PacketSource, iface string, rec *Recorder, fn func(domain.Frame)) error {
	source.DecodeOptions = gopacket.DecodeOptions{Lazy: true}
	packets := source.Packets()
	for {
		select {
		case <-ctx.Done():
			return nil
		case packet, ok := <-packets:
			if !ok {
				return nil
			}
			if rec != nil {
				if err := rec.WritePacket(packet.Metadata().CaptureInfo, packet.Data()); err != nil {
					log.Printf("Error writing packet to pcap: %v", err)
				}
			}
			if f, ok := toFrame(packet, iface); ok {
				fn(f)
			}
		}
	}
}

var (
	_ ports.FrameSource = (*PcapSource)(nil)
	_ ports.FrameSource = (*FileSource)(nil)
)

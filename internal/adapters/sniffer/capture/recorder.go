package capture

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Recorder writes every captured packet, radiotap header included, to a
// pcap file readable by Wireshark and aircrack-ng.
type Recorder struct {
	mu      sync.Mutex
	f       *os.File
	w       *pcapgo.Writer
	packets int
}

// NewRecorder creates (truncating) the pcap file at path.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create capture file: %w", err)
	}
	w := pcapgo.NewWriter(f)
	// LinkType 127 is DLT_IEEE802_11_RADIO (Radiotap)
	if err := w.WriteFileHeader(DefaultSnapLen, layers.LinkTypeIEEE80211Radio); err != nil {
		f.Close()
		return nil, fmt.Errorf("write capture header: %w", err)
	}
	return &Recorder{f: f, w: w}, nil
}

// WritePacket appends one packet.
func (r *Recorder) WritePacket(ci gopacket.CaptureInfo, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return os.ErrClosed
	}
	if err := r.w.WritePacket(ci, data); err != nil {
		return err
	}
	r.packets++
	return nil
}

// Packets returns how many packets were written.
func (r *Recorder) Packets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.packets
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return nil
	}
	r.w = nil
	return r.f.Close()
}

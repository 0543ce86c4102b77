package hopping

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// switchTimeout bounds a single iw invocation.
const switchTimeout = 2 * time.Second

// LinuxChannelSwitcher tunes an interface with the 'iw' command.
type LinuxChannelSwitcher struct {
	// Command is the binary to run, "iw" when empty.
	Command string
}

// NewLinuxChannelSwitcher creates a new LinuxChannelSwitcher.
func NewLinuxChannelSwitcher() *LinuxChannelSwitcher {
	return &LinuxChannelSwitcher{Command: "iw"}
}

// SetChannel executes `iw <iface> set channel <n>`.
func (s *LinuxChannelSwitcher) SetChannel(iface string, channel int) error {
	bin := s.Command
	if bin == "" {
		bin = "iw"
	}
	ctx, cancel := context.WithTimeout(context.Background(), switchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, iface, "set", "channel", fmt.Sprintf("%d", channel))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to set channel %d on %s: %w (%s)", channel, iface, err, out)
	}
	return nil
}

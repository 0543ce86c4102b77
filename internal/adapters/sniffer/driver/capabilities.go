package driver

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Runner executes an external command and returns its combined output.
type Runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Capabilities lists the channels a radio can listen on, grouped by band.
type Capabilities struct {
	PHY      string
	Bands    map[string]bool
	Channels []int
}

// Supports reports whether ch is usable on this radio.
func (c Capabilities) Supports(ch int) bool {
	i := sort.SearchInts(c.Channels, ch)
	return i < len(c.Channels) && c.Channels[i] == ch
}

// Filter keeps the channels of plan the radio supports, in plan order.
func (c Capabilities) Filter(plan []int) []int {
	out := make([]int, 0, len(plan))
	for _, ch := range plan {
		if c.Supports(ch) {
			out = append(out, ch)
		}
	}
	return out
}

// Prober reads radio capabilities through iw.
type Prober struct {
	run Runner
}

// NewProber returns a Prober that shells out to iw.
func NewProber() *Prober {
	return &Prober{run: execRunner}
}

// Capabilities resolves the PHY of iface and returns its enabled channels.
func (p *Prober) Capabilities(iface string) (Capabilities, error) {
	out, err := p.run("iw", "dev")
	if err != nil {
		return Capabilities{}, fmt.Errorf("iw dev: %w (%s)", err, bytes.TrimSpace(out))
	}
	phy, err := parsePhyForInterface(out, iface)
	if err != nil {
		return Capabilities{}, err
	}

	out, err = p.run("iw", "phy", phy, "info")
	if err != nil {
		return Capabilities{}, fmt.Errorf("iw phy %s info: %w (%s)", phy, err, bytes.TrimSpace(out))
	}
	caps := parsePhyInfo(out)
	caps.PHY = phy
	return caps, nil
}

// parsePhyForInterface finds the "phy#N" block that lists iface in `iw dev`
// output and returns it as "phyN".
func parsePhyForInterface(out []byte, iface string) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	current := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "phy#"):
			current = strings.Replace(line, "#", "", 1)
		case line == "Interface "+iface && current != "":
			return current, nil
		}
	}
	return "", fmt.Errorf("%w: %s not listed by iw dev", ErrInterfaceNotFound, iface)
}

var reChannel = regexp.MustCompile(`\[([0-9]+)\]`)

// parsePhyInfo collects the enabled channels of every "Frequencies:" block.
// Lines look like "* 5180 MHz [36] (22.0 dBm)"; disabled ones are skipped.
// No-IR channels are kept since listening is passive.
func parsePhyInfo(out []byte) Capabilities {
	caps := Capabilities{Bands: make(map[string]bool)}
	seen := make(map[int]bool)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	inFrequencies := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "Frequencies:" {
			inFrequencies = true
			continue
		}
		if !inFrequencies {
			continue
		}
		if !strings.HasPrefix(line, "*") {
			inFrequencies = false
			continue
		}
		if strings.Contains(line, "(disabled)") {
			continue
		}
		m := reChannel.FindStringSubmatch(line)
		if len(m) < 2 {
			continue
		}
		ch, err := strconv.Atoi(m[1])
		if err != nil || seen[ch] {
			continue
		}
		seen[ch] = true
		caps.Channels = append(caps.Channels, ch)

		mhz := 0
		if fields := strings.Fields(strings.TrimPrefix(line, "*")); len(fields) > 0 {
			mhz, _ = strconv.Atoi(strings.TrimSuffix(fields[0], ".0"))
		}
		switch {
		case mhz >= 5925:
			caps.Bands["6ghz"] = true
		case mhz >= 5000 || (mhz == 0 && ch >= 36):
			caps.Bands["5ghz"] = true
		default:
			caps.Bands["2.4ghz"] = true
		}
	}
	sort.Ints(caps.Channels)
	return caps
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// HiddenPlaceholder is shown in place of an SSID the AP withholds.
const HiddenPlaceholder = "[Hidden]"

// MaxSSIDLen is the largest SSID the standard allows.
const MaxSSIDLen = 32

// SSIDKind discriminates SSIDStatus.
type SSIDKind uint8

const (
	// SSIDAbsent means the frame made no SSID claim (no element, or an oversized one).
	SSIDAbsent SSIDKind = iota
	// SSIDHidden means the element was present but blanked.
	SSIDHidden
	// SSIDKnown means the element carried a usable name.
	SSIDKnown
)

func (k SSIDKind) String() string {
	switch k {
	case SSIDHidden:
		return "hidden"
	case SSIDKnown:
		return "known"
	default:
		return "absent"
	}
}

// SSIDStatus is the single result type of SSID extraction.
// Length is the declared element length (preserved for hidden SSIDs).
type SSIDStatus struct {
	Kind   SSIDKind
	Raw    []byte
	Length int
}

// KnownSSID wraps a non-blank SSID. The bytes are copied.
func KnownSSID(raw []byte) SSIDStatus {
	b := make([]byte, len(raw))
	copy(b, raw)
	return SSIDStatus{Kind: SSIDKnown, Raw: b, Length: len(b)}
}

// HiddenSSID records a blanked SSID of the given declared length.
func HiddenSSID(length int) SSIDStatus {
	return SSIDStatus{Kind: SSIDHidden, Length: length}
}

// AbsentSSID is the zero value, spelled out for readability at call sites.
func AbsentSSID() SSIDStatus {
	return SSIDStatus{}
}

func (s SSIDStatus) IsKnown() bool  { return s.Kind == SSIDKnown }
func (s SSIDStatus) IsHidden() bool { return s.Kind == SSIDHidden }
func (s SSIDStatus) IsAbsent() bool { return s.Kind == SSIDAbsent }

// Equal compares kind, length and bytes.
func (s SSIDStatus) Equal(o SSIDStatus) bool {
	return s.Kind == o.Kind && s.Length == o.Length && bytes.Equal(s.Raw, o.Raw)
}

// Display renders the SSID for humans: printable ASCII literally, anything
// else as hex of the first four bytes with ".." when longer.
func (s SSIDStatus) Display() string {
	switch s.Kind {
	case SSIDHidden:
		return HiddenPlaceholder
	case SSIDAbsent:
		return ""
	}
	return FormatSSID(s.Raw)
}

// FormatSSID applies the display rule to raw SSID bytes.
func FormatSSID(raw []byte) string {
	if len(raw) == 0 || allZero(raw) {
		return HiddenPlaceholder
	}
	if len(raw) > MaxSSIDLen {
		raw = raw[:MaxSSIDLen]
	}
	printable := true
	for _, c := range raw {
		if c < 32 || c > 126 {
			printable = false
			break
		}
	}
	if printable {
		return string(raw)
	}

	n := len(raw)
	if n > 4 {
		n = 4
	}
	var sb strings.Builder
	for _, c := range raw[:n] {
		fmt.Fprintf(&sb, "%02X", c)
	}
	if len(raw) > 4 {
		sb.WriteString("..")
	}
	return sb.String()
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// MarshalJSON renders the status as {"kind","display","length"}.
func (s SSIDStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string `json:"kind"`
		Display string `json:"display,omitempty"`
		Length  int    `json:"length"`
	}{s.Kind.String(), s.Display(), s.Length})
}

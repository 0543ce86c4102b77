package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMAC is returned when a hardware address cannot be parsed.
var ErrInvalidMAC = errors.New("invalid MAC address format")

// MAC is a 48-bit IEEE 802 hardware address.
type MAC [6]byte

var (
	// BroadcastMAC is the all-ones address used by undirected probes.
	BroadcastMAC = MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	// ZeroMAC is the all-zeros address.
	ZeroMAC = MAC{}
)

// MACFromBytes copies the first six bytes of b. Short input yields ZeroMAC.
func MACFromBytes(b []byte) MAC {
	var m MAC
	if len(b) < len(m) {
		return m
	}
	copy(m[:], b[:6])
	return m
}

// ParseMAC parses "AA:BB:CC:DD:EE:FF" or "AA-BB-CC-DD-EE-FF" (case insensitive).
func ParseMAC(s string) (MAC, error) {
	var m MAC
	s = strings.TrimSpace(s)
	if len(s) != 17 {
		return m, fmt.Errorf("%w: %q", ErrInvalidMAC, s)
	}
	for i := 0; i < 6; i++ {
		if i > 0 {
			sep := s[i*3-1]
			if sep != ':' && sep != '-' {
				return m, fmt.Errorf("%w: %q", ErrInvalidMAC, s)
			}
		}
		hi, ok1 := fromHex(s[i*3])
		lo, ok2 := fromHex(s[i*3+1])
		if !ok1 || !ok2 {
			return m, fmt.Errorf("%w: %q", ErrInvalidMAC, s)
		}
		m[i] = hi<<4 | lo
	}
	return m, nil
}

// MustParseMAC is ParseMAC for constants in tests and tables.
func MustParseMAC(s string) MAC {
	m, err := ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return m
}

func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// String returns the canonical upper-case colon form.
func (m MAC) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", m[0], m[1], m[2], m[3], m[4], m[5])
}

// OUI returns the organizationally unique identifier (first three octets).
func (m MAC) OUI() [3]byte {
	return [3]byte{m[0], m[1], m[2]}
}

// OUIString returns the OUI as "AA:BB:CC".
func (m MAC) OUIString() string {
	return fmt.Sprintf("%02X:%02X:%02X", m[0], m[1], m[2])
}

func (m MAC) IsBroadcast() bool { return m == BroadcastMAC }

func (m MAC) IsZero() bool { return m == ZeroMAC }

// IsUndirected reports whether the address names no specific station.
func (m MAC) IsUndirected() bool { return m.IsBroadcast() || m.IsZero() }

// IsMulticast checks the group bit of the first octet.
func (m MAC) IsMulticast() bool { return m[0]&0x01 != 0 }

// IsLocallyAdministered checks the U/L bit; set on randomized client addresses.
func (m MAC) IsLocallyAdministered() bool { return m[0]&0x02 != 0 }

// IsStation reports whether m can identify a single transmitting station.
func (m MAC) IsStation() bool {
	return !m.IsZero() && !m.IsBroadcast() && !m.IsMulticast()
}

// MarshalText implements encoding.TextMarshaler.
func (m MAC) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MAC) UnmarshalText(b []byte) error {
	parsed, err := ParseMAC(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

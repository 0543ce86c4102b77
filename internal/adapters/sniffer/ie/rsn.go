package ie

import (
	"fmt"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// Suite is an OUI plus suite type, as used for ciphers and AKMs.
type Suite struct {
	OUI  [3]byte
	Type uint8
}

func (s Suite) standard() bool { return s.OUI == OUIIEEE }

// RSNInfo represents the parsed RSN Information Element
type RSNInfo struct {
	Version         uint16
	GroupCipher     Suite
	PairwiseCiphers []Suite
	AKMSuites       []Suite
	Capabilities    RSNCapabilities
}

// RSNCapabilities holds the management frame protection bits of the RSN
// capabilities field.
type RSNCapabilities struct {
	MFPRequired bool
	MFPCapable  bool
}

// AKM suite types under OUI 00:0F:AC.
const (
	AKM8021X       = 1
	AKMPSK         = 2
	AKMFT8021X     = 3
	AKMFTPSK       = 4
	AKM8021XSHA256 = 5
	AKMPSKSHA256   = 6
	AKMSAE         = 8
	AKMFTSAE       = 9
	AKMSuiteB      = 11
	AKMSuiteB192   = 12
	AKMFT8021X384  = 13
	AKMOWE         = 18
	AKMSAEExtKey   = 24
	AKMFTSAEExtKey = 25
)

// ParseRSN parses IE 48 (RSN Information Element). Only the version is
// mandatory; each later field is read when it is present in full. Suite
// counts are little-endian and a count larger than the remaining data
// truncates the list.
func ParseRSN(data []byte) (*RSNInfo, error) {
	c := &cursor{b: data}
	version, ok := c.u16le()
	if !ok {
		return nil, fmt.Errorf("RSN IE too short: %w", ErrMalformedIE)
	}
	rsn := &RSNInfo{Version: version}

	if s, ok := readSuite(c); ok {
		rsn.GroupCipher = s
	} else {
		return rsn, nil
	}

	rsn.PairwiseCiphers, ok = readSuiteList(c)
	if !ok {
		return rsn, nil
	}
	rsn.AKMSuites, ok = readSuiteList(c)
	if !ok {
		return rsn, nil
	}

	if caps, ok := c.u16le(); ok {
		rsn.Capabilities = parseRSNCapabilities(caps)
	}
	return rsn, nil
}

func readSuite(c *cursor) (Suite, bool) {
	p, ok := c.take(4)
	if !ok {
		return Suite{}, false
	}
	var s Suite
	copy(s.OUI[:], p[:3])
	s.Type = p[3]
	return s, true
}

// readSuiteList reads a count and up to that many suites. It reports false
// when the list was cut short, so callers stop reading later fields.
func readSuiteList(c *cursor) ([]Suite, bool) {
	count, ok := c.u16le()
	if !ok {
		return nil, false
	}
	var out []Suite
	for i := 0; i < int(count); i++ {
		s, ok := readSuite(c)
		if !ok {
			return out, false
		}
		out = append(out, s)
	}
	return out, true
}

// CipherName returns the conventional name of a cipher suite.
func CipherName(s Suite) string {
	if !s.standard() {
		return fmt.Sprintf("VENDOR(%02X%02X%02X:%d)", s.OUI[0], s.OUI[1], s.OUI[2], s.Type)
	}
	switch s.Type {
	case 1:
		return "WEP-40"
	case 2:
		return "TKIP"
	case 4:
		return "CCMP" // AES
	case 5:
		return "WEP-104"
	case 8:
		return "GCMP-128"
	case 9:
		return "GCMP-256"
	case 10:
		return "CCMP-256"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s.Type)
	}
}

// AKMName returns the conventional name of an AKM suite.
func AKMName(s Suite) string {
	if !s.standard() {
		return fmt.Sprintf("VENDOR(%02X%02X%02X:%d)", s.OUI[0], s.OUI[1], s.OUI[2], s.Type)
	}
	switch s.Type {
	case AKM8021X:
		return "802.1X"
	case AKMPSK:
		return "PSK"
	case AKMFT8021X:
		return "FT-802.1X"
	case AKMFTPSK:
		return "FT-PSK"
	case AKM8021XSHA256:
		return "802.1X-SHA256"
	case AKMPSKSHA256:
		return "PSK-SHA256"
	case AKMSAE:
		return "SAE" // WPA3-Personal
	case AKMFTSAE:
		return "FT-SAE"
	case AKMSuiteB, AKMSuiteB192:
		return "SUITE-B"
	case AKMFT8021X384:
		return "FT-802.1X-SHA384"
	case AKMOWE:
		return "OWE" // Opportunistic Wireless Encryption
	case AKMSAEExtKey:
		return "SAE-EXT-KEY"
	case AKMFTSAEExtKey:
		return "FT-SAE-EXT-KEY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s.Type)
	}
}

func parseRSNCapabilities(caps uint16) RSNCapabilities {
	return RSNCapabilities{
		MFPRequired: (caps & 0x0040) != 0,
		MFPCapable:  (caps & 0x0080) != 0,
	}
}

// DescribeRSN names the suites of the first RSN element in body. It
// returns nil when there is none or its version field is cut short.
func DescribeRSN(body []byte) *domain.RSNDetails {
	e, ok := Find(body, TagRSN)
	if !ok {
		return nil
	}
	rsn, err := ParseRSN(e.Value)
	if err != nil {
		return nil
	}
	d := &domain.RSNDetails{
		MFPRequired: rsn.Capabilities.MFPRequired,
		MFPCapable:  rsn.Capabilities.MFPCapable,
	}
	if rsn.GroupCipher != (Suite{}) {
		d.GroupCipher = CipherName(rsn.GroupCipher)
	}
	for _, s := range rsn.PairwiseCiphers {
		d.PairwiseCiphers = append(d.PairwiseCiphers, CipherName(s))
	}
	for _, s := range rsn.AKMSuites {
		d.AKMs = append(d.AKMs, AKMName(s))
	}
	return d
}

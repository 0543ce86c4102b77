package ie

import (
	"unicode/utf8"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// Vendor types under the Microsoft OUI that carry WPS attributes.
const (
	vendorTypeWPA = 0x01
	vendorTypeWPS = 0x04
	vendorTypeP2P = 0x05
)

// WPS attribute types.
const (
	attrDeviceName      = 0x1011
	attrDevicePassword  = 0x1012
	attrManufacturer    = 0x1021
	attrModelName       = 0x1023
	attrWPSState        = 0x1044
	attrVendorExtension = 0x1049
	attrVersion         = 0x104A
	attrAPSetupLocked   = 0x1057

	// WFA vendor extension subelement holding Version2.
	wfaVersion2 = 0x00
)

// DetectWPS looks for a WPS or P2P vendor element and reads its attributes.
// A matching element without a readable version is reported as version 1.
func DetectWPS(body []byte) domain.WPSInfo {
	var info domain.WPSInfo
	Walk(body, func(e Element) bool {
		v, ok := ParseVendor(e)
		if !ok || v.OUI != OUIMicrosoft {
			return true
		}
		if v.Type != vendorTypeWPS && v.Type != vendorTypeP2P {
			return true
		}
		info.Enabled = true
		parseWPSAttributes(v.Data, &info)
		return true
	})
	if info.Enabled && info.Version == 0 {
		info.Version = 1
	}
	return info
}

// parseWPSAttributes reads big-endian type/length attributes into info.
// Parsing stops at the first attribute that overruns the data.
func parseWPSAttributes(data []byte, info *domain.WPSInfo) {
	c := &cursor{b: data}
	for c.len() > 0 {
		attrType, ok := c.u16be()
		if !ok {
			return
		}
		attrLen, ok := c.u16be()
		if !ok {
			return
		}
		val, ok := c.take(int(attrLen))
		if !ok {
			return
		}

		switch attrType {
		case attrManufacturer:
			info.Manufacturer = safeString(val)
		case attrModelName:
			info.Model = safeString(val)
		case attrDeviceName:
			info.DeviceName = safeString(val)
		case attrWPSState:
			if len(val) > 0 {
				switch val[0] {
				case 0x01:
					info.State = "unconfigured"
				case 0x02:
					info.State = "configured"
				}
			}
		case attrVersion:
			if len(val) > 0 {
				info.Version = max(info.Version, versionFromByte(val[0]))
			}
		case attrVendorExtension:
			info.Version = max(info.Version, vendorExtensionVersion(val))
		case attrAPSetupLocked:
			if len(val) > 0 && val[0] == 0x01 {
				info.Locked = true
			}
		}
	}
}

// vendorExtensionVersion reads Version2 from a WFA vendor extension. A value
// without the WFA OUI is read as a bare version byte.
func vendorExtensionVersion(val []byte) int {
	if len(val) >= 3 && [3]byte{val[0], val[1], val[2]} == OUIWFA {
		c := &cursor{b: val[3:]}
		for c.len() > 0 {
			id, ok := c.u8()
			if !ok {
				return 0
			}
			n, ok := c.u8()
			if !ok {
				return 0
			}
			sub, ok := c.take(int(n))
			if !ok {
				return 0
			}
			if id == wfaVersion2 && len(sub) > 0 {
				return versionFromByte(sub[0])
			}
		}
		return 0
	}
	if len(val) > 0 {
		return versionFromByte(val[0])
	}
	return 0
}

func versionFromByte(b byte) int {
	switch {
	case b >= 0x20:
		return 2
	case b >= 0x10:
		return 1
	}
	return 0
}

// safeString returns data as a string, or "" when it is not valid UTF-8.
func safeString(data []byte) string {
	if !utf8.Valid(data) {
		return ""
	}
	return string(data)
}

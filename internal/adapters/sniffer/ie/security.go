package ie

import (
	"github.com/lcalzada-xor/wreveal/internal/adapters/sniffer/dot11"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// securityFindings accumulates what the elements of one frame advertise.
type securityFindings struct {
	rsn        bool
	psk        bool
	sae        bool
	enterprise bool
	wpa        bool
	wapi       bool
	wep        bool
}

func (f *securityFindings) addAKM(s Suite) {
	if !s.standard() {
		return
	}
	switch s.Type {
	case AKMPSK, AKMFTPSK, AKMPSKSHA256:
		f.psk = true
	case AKMSAE, AKMFTSAE, AKMSAEExtKey, AKMFTSAEExtKey, AKMOWE:
		f.sae = true
	case AKM8021X, AKMFT8021X, AKM8021XSHA256, AKMSuiteB, AKMSuiteB192, AKMFT8021X384:
		f.enterprise = true
	}
}

// verdict resolves the findings, most specific first.
func (f securityFindings) verdict() domain.Encryption {
	switch {
	case f.rsn && f.sae && f.psk:
		return domain.EncryptionWPA2WPA3
	case f.rsn && f.sae:
		return domain.EncryptionWPA3
	case f.rsn && f.enterprise:
		return domain.EncryptionWPA2Enterprise
	case f.rsn && f.wpa:
		return domain.EncryptionWPAWPA2
	case f.rsn:
		return domain.EncryptionWPA2
	case f.wpa:
		return domain.EncryptionWPA
	case f.wapi:
		return domain.EncryptionWAPI
	case f.wep:
		return domain.EncryptionWEP
	}
	return domain.EncryptionOpen
}

// ClassifySecurity resolves the encryption verdict of a management body.
// capability is the fixed capability field; its privacy bit only counts
// when no RSN, WPA or WAPI element is present.
func ClassifySecurity(body []byte, capability uint16) domain.Encryption {
	f := securityFindings{wep: capability&dot11.CapabilityPrivacy != 0}

	Walk(body, func(e Element) bool {
		switch e.ID {
		case TagSSID:
		case TagRSN:
			f.rsn = true
			if rsn, err := ParseRSN(e.Value); err == nil {
				for _, akm := range rsn.AKMSuites {
					f.addAKM(akm)
				}
			}
		case TagVendorSpecific:
			v, ok := ParseVendor(e)
			if !ok || v.Type != vendorTypeWPA {
				break
			}
			switch v.OUI {
			case OUIMicrosoft:
				f.wpa = true
			case OUIWAPI:
				f.wapi = true
			}
		}
		return true
	})

	return f.verdict()
}

package domain

// Encryption is the single security verdict resolved for an AP.
type Encryption uint8

const (
	EncryptionOpen Encryption = iota
	EncryptionWEP
	EncryptionWPA
	EncryptionWPA2
	EncryptionWPAWPA2
	EncryptionWPA2Enterprise
	EncryptionWPA3
	EncryptionWPA2WPA3
	EncryptionWAPI
)

var encryptionNames = map[Encryption]string{
	EncryptionOpen:           "OPEN",
	EncryptionWEP:            "WEP",
	EncryptionWPA:            "WPA",
	EncryptionWPA2:           "WPA2",
	EncryptionWPAWPA2:        "WPA/WPA2",
	EncryptionWPA2Enterprise: "WPA2-Enterprise",
	EncryptionWPA3:           "WPA3",
	EncryptionWPA2WPA3:       "WPA2/WPA3",
	EncryptionWAPI:           "WAPI",
}

func (e Encryption) String() string {
	if name, ok := encryptionNames[e]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseEncryption is the inverse of String. Unknown names map to Open.
func ParseEncryption(s string) Encryption {
	for e, name := range encryptionNames {
		if name == s {
			return e
		}
	}
	return EncryptionOpen
}

func (e Encryption) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Encryption) UnmarshalText(b []byte) error {
	*e = ParseEncryption(string(b))
	return nil
}

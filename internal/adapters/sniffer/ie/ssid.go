package ie

import "github.com/lcalzada-xor/wreveal/internal/core/domain"

// ExtractSSID classifies the first SSID element of a body.
//
// A zero-length element, or one made only of zero bytes (which includes the
// one-byte broadcast probe idiom), is hidden and keeps its declared length.
// A missing element, one that overruns the body, or one longer than 32 bytes
// makes no claim at all.
func ExtractSSID(body []byte) domain.SSIDStatus {
	e, ok := Find(body, TagSSID)
	if !ok {
		return domain.AbsentSSID()
	}
	n := int(e.Length)
	if n > domain.MaxSSIDLen {
		return domain.AbsentSSID()
	}
	if n == 0 || zeroed(e.Value) {
		return domain.HiddenSSID(n)
	}
	return domain.KnownSSID(e.Value)
}

func zeroed(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

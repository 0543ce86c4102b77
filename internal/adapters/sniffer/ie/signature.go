package ie

import (
	"crypto/sha256"
	"encoding/hex"
)

const tagTIM = 5

// signatureLen is the number of hex digits kept from the digest.
const signatureLen = 16

// Signature hashes the elements a station sends with its probe and
// association requests. Elements that vary per request or channel (SSID,
// DS Parameter Set, TIM) are skipped, so the result reflects the driver and
// chipset rather than the scan target. It returns "" when nothing remains.
func Signature(body []byte) string {
	h := sha256.New()
	n := 0
	Walk(body, func(e Element) bool {
		switch e.ID {
		case TagSSID, TagDSParameterSet, tagTIM:
			return true
		}
		h.Write([]byte{e.ID, e.Length})
		h.Write(e.Value)
		n++
		return true
	})
	if n == 0 {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))[:signatureLen]
}

package dot11

// FrequencyToChannel converts a center frequency in MHz to an IEEE channel
// number. Unknown frequencies map to 0.
func FrequencyToChannel(freq int) int {
	// 2.4 GHz band (channels 1-14)
	if freq >= 2412 && freq <= 2484 {
		if freq == 2484 {
			return 14
		}
		return (freq - 2407) / 5
	}

	// 5 GHz band (channels 36-165)
	if freq >= 5170 && freq <= 5825 {
		return (freq - 5000) / 5
	}

	// 6 GHz band
	if freq >= 5955 && freq <= 7115 {
		return (freq - 5950) / 5
	}

	return 0
}

// ChannelToFrequency is the 2.4 GHz / 5 GHz inverse of FrequencyToChannel.
func ChannelToFrequency(ch int) int {
	switch {
	case ch == 14:
		return 2484
	case ch >= 1 && ch <= 13:
		return 2407 + ch*5
	case ch >= 36 && ch <= 165:
		return 5000 + ch*5
	}
	return 0
}

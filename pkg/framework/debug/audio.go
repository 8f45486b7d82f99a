package debug

import "math"

// IsSilent reports whether every sample in every channel is exactly zero.
// It does not allocate and is safe to call on the audio thread.
func IsSilent(channels [][]float32) bool {
	for _, ch := range channels {
		for _, s := range ch {
			if s != 0 {
				return false
			}
		}
	}
	return true
}

// HasNonFinite reports whether any channel holds a NaN or infinite sample.
// It does not allocate.
func HasNonFinite(channels [][]float32) bool {
	for _, ch := range channels {
		for _, s := range ch {
			f := float64(s)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return true
			}
		}
	}
	return false
}

// Package gain converts between decibels and amplitude and applies gain to
// sample buffers without allocating.
package gain

import "math"

// MinDB is treated as silence.
const MinDB = -200.0

// LinearToDb32 converts an amplitude to decibels. Returns MinDB for values <= 0.
func LinearToDb32(linear float32) float32 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * float32(math.Log10(float64(linear)))
}

// DbToLinear32 converts decibels to an amplitude. Values <= MinDB return 0.
func DbToLinear32(db float32) float32 {
	if db <= MinDB {
		return 0
	}
	return float32(math.Pow(10.0, float64(db)/20.0))
}

// ApplyTo writes src scaled by gain into dst, over the shorter of the two.
func ApplyTo(dst, src []float32, gain float32) {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = src[i] * gain
	}
}

// RampTo writes src into dst with a gain moving linearly from start to end.
// The last sample gets exactly end, so consecutive blocks join without a step.
func RampTo(dst, src []float32, start, end float32) {
	n := min(len(dst), len(src))
	if n == 0 {
		return
	}
	if start == end || n == 1 {
		ApplyTo(dst[:n], src[:n], end)
		return
	}
	step := (end - start) / float32(n)
	g := start
	for i := 0; i < n; i++ {
		g += step
		dst[i] = src[i] * g
	}
	dst[n-1] = src[n-1] * end
}

// HardClipBuffer limits every sample to [-threshold, threshold].
func HardClipBuffer(buffer []float32, threshold float32) {
	for i, s := range buffer {
		if s > threshold {
			buffer[i] = threshold
		} else if s < -threshold {
			buffer[i] = -threshold
		}
	}
}

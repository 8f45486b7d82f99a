// Package oscillator provides a phase-continuous sine oscillator.
package oscillator

import "math"

// Oscillator generates a sine wave. Phase is kept in cycles (0-1) so
// frequency changes never jump.
type Oscillator struct {
	sampleRate float64
	frequency  float64
	phase      float64
	phaseInc   float64
}

// New creates a new oscillator at 440 Hz.
func New(sampleRate float64) *Oscillator {
	o := &Oscillator{sampleRate: sampleRate}
	o.SetFrequency(440.0)
	return o
}

// SetSampleRate keeps the frequency and recomputes the phase increment.
func (o *Oscillator) SetSampleRate(sampleRate float64) {
	o.sampleRate = sampleRate
	o.SetFrequency(o.frequency)
}

// SetFrequency sets the oscillator frequency in Hz.
func (o *Oscillator) SetFrequency(freq float64) {
	o.frequency = freq
	o.phaseInc = freq / o.sampleRate
}

// Frequency returns the current frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// Reset resets the oscillator phase to 0
func (o *Oscillator) Reset() {
	o.phase = 0.0
}

// Next returns one sample and advances the phase.
func (o *Oscillator) Next() float32 {
	sample := float32(math.Sin(2.0 * math.Pi * o.phase))
	o.phase += o.phaseInc
	if o.phase >= 1.0 {
		o.phase -= math.Floor(o.phase)
	}
	return sample
}

// Add mixes amplitude-scaled samples into buffer.
func (o *Oscillator) Add(buffer []float32, amplitude float32) {
	for i := range buffer {
		buffer[i] += amplitude * o.Next()
	}
}

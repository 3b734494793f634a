// Package oscillator provides audio oscillators for synthesis
package oscillator

import (
	"math"

	"github.com/audiospace/atomspace/pkg/dsp"
)

// Advance returns sin(phase) and the phase moved forward by one sample at freq.
// Frequency is not sanitized; a non-positive value gives a constant or backward walk.
func Advance(phase, freq, sampleRate float64) (sample, next float64) {
	sample = math.Sin(phase)
	next = Wrap(phase + dsp.TwoPi*freq/sampleRate)
	return sample, next
}

// Increment returns the per-sample phase step in radians
func Increment(freq, sampleRate float64) float64 {
	return dsp.TwoPi * freq / sampleRate
}

// Wrap folds a phase into [0, 2π).
//
// Audio-rate increments never exceed 2π, so a single subtraction is the normal
// path and matches the classic accumulator bit for bit. Anything still out of
// range after that (frequencies near the sample rate, negative walks) falls back
// to a true modulo.
func Wrap(phase float64) float64 {
	if phase >= dsp.TwoPi {
		phase -= dsp.TwoPi
	}
	if phase >= 0 && phase < dsp.TwoPi {
		return phase
	}
	phase = math.Mod(phase, dsp.TwoPi)
	if phase < 0 {
		phase += dsp.TwoPi
	}
	if phase >= dsp.TwoPi {
		phase = 0
	}
	return phase
}

// Oscillator is a sine phase accumulator with its phase in radians
type Oscillator struct {
	sampleRate float64
	frequency  float64
	phase      float64
	phaseInc   float64
}

// New creates a new oscillator
func New(sampleRate float64) *Oscillator {
	return &Oscillator{
		sampleRate: sampleRate,
		frequency:  dsp.DefaultToneFreq,
		phase:      0.0,
		phaseInc:   Increment(dsp.DefaultToneFreq, sampleRate),
	}
}

// SetFrequency sets the oscillator frequency
func (o *Oscillator) SetFrequency(freq float64) {
	o.frequency = freq
	o.phaseInc = Increment(freq, o.sampleRate)
}

// Frequency returns the fixed frequency used by Sine
func (o *Oscillator) Frequency() float64 {
	return o.frequency
}

// SetPhase sets the oscillator phase in radians
func (o *Oscillator) SetPhase(phase float64) {
	o.phase = Wrap(phase)
}

// Phase returns the current phase in radians
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// Reset resets the oscillator phase to 0
func (o *Oscillator) Reset() {
	o.phase = 0.0
}

// Sine generates a sine wave sample at the fixed frequency
func (o *Oscillator) Sine() float64 {
	sample := math.Sin(o.phase)
	o.phase = Wrap(o.phase + o.phaseInc)
	return sample
}

// SineAt generates a sine wave sample, then advances the phase at freq.
// Used when the frequency moves every sample (sweeps, FM).
func (o *Oscillator) SineAt(freq float64) float64 {
	var sample float64
	sample, o.phase = Advance(o.phase, freq, o.sampleRate)
	return sample
}

// ProcessSine fills buffer with sine wave - no allocations
func (o *Oscillator) ProcessSine(buffer []float32) {
	for i := range buffer {
		buffer[i] = float32(o.Sine())
	}
}

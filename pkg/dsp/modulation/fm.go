package modulation

import (
	"github.com/audiospace/atomspace/pkg/dsp/distortion"
	"github.com/audiospace/atomspace/pkg/dsp/oscillator"
)

// FM is a sine carrier whose instantaneous frequency is f0*(1 + depth*m).
// The carrier is read, shaped near modulation peaks, then advanced at the
// instantaneous frequency.
type FM struct {
	carrier  *oscillator.Oscillator
	shaper   *distortion.PeakShaper
	baseFreq float64
	depth    float64
	lastFreq float64
}

// NewFM creates a frequency-modulated carrier
func NewFM(sampleRate, baseFreq, depth, distortionAmount float64) *FM {
	f := &FM{
		carrier:  oscillator.New(sampleRate),
		shaper:   distortion.NewPeakShaper(distortionAmount),
		baseFreq: baseFreq,
		depth:    depth,
		lastFreq: baseFreq,
	}
	return f
}

// SetBaseFrequency sets f0
func (f *FM) SetBaseFrequency(freq float64) {
	f.baseFreq = freq
}

// BaseFrequency returns f0
func (f *FM) BaseFrequency() float64 {
	return f.baseFreq
}

// SetDepth sets the modulation depth
func (f *FM) SetDepth(depth float64) {
	f.depth = depth
}

// SetDistortion sets the peak distortion amount
func (f *FM) SetDistortion(amount float64) {
	f.shaper.SetAmount(amount)
}

// SetPeakSource selects the signal keying the peak region
func (f *FM) SetPeakSource(source distortion.PeakSource) {
	f.shaper.SetSource(source)
}

// InstantaneousFrequency returns f0*(1 + depth*m)
func (f *FM) InstantaneousFrequency(m float64) float64 {
	return f.baseFreq * (1.0 + f.depth*m)
}

// LastFrequency returns the frequency the carrier last advanced at
func (f *FM) LastFrequency() float64 {
	return f.lastFreq
}

// Next produces one carrier sample for modulation value m
func (f *FM) Next(m float64) float64 {
	freq := f.InstantaneousFrequency(m)
	phase := f.carrier.Phase()

	sample := f.carrier.SineAt(freq)
	f.lastFreq = freq
	return f.shaper.Shape(sample, phase, m, freq, f.baseFreq)
}

// Phase returns the carrier phase in radians
func (f *FM) Phase() float64 {
	return f.carrier.Phase()
}

// Reset zeroes the carrier phase
func (f *FM) Reset() {
	f.carrier.Reset()
	f.lastFreq = f.baseFreq
}

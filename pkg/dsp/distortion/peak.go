// Package distortion provides harmonic shaping and clipping stages
package distortion

import (
	"math"

	"github.com/audiospace/atomspace/pkg/dsp"
)

// PeakSource selects which signal decides whether a sample is near a peak
type PeakSource int

const (
	// PeakFromModulator keys the region off the modulation signal
	PeakFromModulator PeakSource = iota
	// PeakFromCarrier keys the region off the carrier sample itself
	PeakFromCarrier
)

// String returns the source name
func (s PeakSource) String() string {
	switch s {
	case PeakFromModulator:
		return "modulator"
	case PeakFromCarrier:
		return "carrier"
	default:
		return "unknown"
	}
}

// SoftClip pulls samples beyond ±1 back inside the unit range.
// Samples already inside pass through unchanged.
func SoftClip(x float64) float64 {
	if x > 1.0 {
		return 1.0 - (1.0-1.0/x)*dsp.SoftClipKneeMix
	}
	if x < -1.0 {
		return -1.0 + (1.0+1.0/x)*dsp.SoftClipKneeMix
	}
	return x
}

// PeakFactor returns how far x sits into the near-peak region, from 0 at the
// region edge to 1 at full scale. Outside the region it is 0.
func PeakFactor(x float64) float64 {
	ax := math.Abs(x)
	if ax <= dsp.PeakRegion {
		return 0
	}
	f := (ax - dsp.PeakRegion) / (1.0 - dsp.PeakRegion)
	if f > 1 {
		f = 1
	}
	return f
}

// PeakShaper injects 2nd and 3rd harmonics of the carrier while the signal is
// near a peak, scaled by how far the instantaneous frequency has moved from
// the base frequency.
type PeakShaper struct {
	amount float64
	source PeakSource
}

// NewPeakShaper creates a shaper with the given distortion amount
func NewPeakShaper(amount float64) *PeakShaper {
	p := &PeakShaper{source: PeakFromModulator}
	p.SetAmount(amount)
	return p
}

// SetAmount sets the distortion amount (0 disables shaping)
func (p *PeakShaper) SetAmount(amount float64) {
	if math.IsNaN(amount) || amount < 0 {
		amount = 0
	}
	p.amount = amount
}

// Amount returns the distortion amount
func (p *PeakShaper) Amount() float64 {
	return p.amount
}

// SetSource selects the signal that decides the near-peak region
func (p *PeakShaper) SetSource(source PeakSource) {
	p.source = source
}

// Source returns the current peak source
func (p *PeakShaper) Source() PeakSource {
	return p.source
}

// Shape processes one carrier sample.
// phase is the carrier phase the sample was read at, mod the modulation value,
// freq the instantaneous carrier frequency and baseFreq the unmodulated one.
func (p *PeakShaper) Shape(sample, phase, mod, freq, baseFreq float64) float64 {
	key := mod
	if p.source == PeakFromCarrier {
		key = sample
	}

	peak := PeakFactor(key)
	if peak == 0 || p.amount == 0 || baseFreq <= 0 {
		return sample
	}

	deviation := math.Abs(freq-baseFreq) / baseFreq
	distortion := peak * deviation * p.amount

	sample += distortion * math.Sin(2*phase) * dsp.SecondHarmonic
	sample += distortion * math.Sin(3*phase) * dsp.ThirdHarmonic
	return SoftClip(sample)
}

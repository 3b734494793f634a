// Package dynamics provides sidechain ducking driven by an external control signal
package dynamics

import (
	"math"

	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/dsp/envelope"
	"github.com/audiospace/atomspace/pkg/dsp/gain"
	"github.com/audiospace/atomspace/pkg/dsp/mix"
)

// UpdateFollower moves the follower toward the control signal, using the
// attack coefficient while the control is above it and release otherwise.
func UpdateFollower(control, follower, attackCoef, releaseCoef float64) float64 {
	if control > follower {
		return control + (follower-control)*attackCoef
	}
	return control + (follower-control)*releaseCoef
}

// NormalizeRatio returns the ratio as N for an N:1 compressor.
// Ratios below 1 are read as their reciprocal, so 0.1 and 10 are both 10:1.
// Non-positive or NaN ratios give the default.
func NormalizeRatio(ratio float64) float64 {
	if ratio <= 0 || math.IsNaN(ratio) {
		return dsp.DefaultRatio
	}
	if ratio < 1 {
		return 1 / ratio
	}
	return ratio
}

// ComputeGain returns the gain in (0, 1] for the given follower level.
// amount blends between unity (0) and the full compressed gain (1).
func ComputeGain(follower, threshold, ratio, amount float64) float64 {
	if follower <= threshold {
		return 1.0
	}

	ratio = NormalizeRatio(ratio)
	compressed := threshold + (follower-threshold)/ratio
	raw := compressed / (follower + dsp.GainEpsilon)
	if raw > 1 {
		raw = 1
	}
	if raw <= 0 {
		raw = dsp.GainEpsilon
	}

	return mix.DryWet(1.0, raw, clampAmount(amount))
}

func clampAmount(amount float64) float64 {
	if math.IsNaN(amount) || amount < 0 {
		return 0
	}
	if amount > 1 {
		return 1
	}
	return amount
}

// Sidechain ducks a signal by the level of a separate control signal
type Sidechain struct {
	sampleRate float64

	// Parameters
	attack    float64 // Attack time in seconds
	release   float64 // Release time in seconds
	threshold float64 // Linear threshold
	ratio     float64 // N for N:1
	amount    float64 // 0..1

	attackCoef  float64
	releaseCoef float64

	// State
	follower float64
	gain     float64
}

// NewSidechain creates a sidechain stage with default timing and threshold
func NewSidechain(sampleRate float64) *Sidechain {
	s := &Sidechain{
		sampleRate: sampleRate,
		threshold:  dsp.DefaultThreshold,
		ratio:      dsp.DefaultRatio,
		amount:     dsp.DefaultSidechain,
		gain:       1.0,
	}
	s.SetTimes(dsp.DefaultAttack, dsp.DefaultRelease)
	return s
}

// SetTimes sets attack and release in seconds
func (s *Sidechain) SetTimes(attack, release float64) {
	if attack != s.attack || s.attackCoef == 0 {
		s.attack = attack
		s.attackCoef = envelope.Coefficient(attack, s.sampleRate)
	}
	if release != s.release || s.releaseCoef == 0 {
		s.release = release
		s.releaseCoef = envelope.Coefficient(release, s.sampleRate)
	}
}

// SetThreshold sets the linear level above which ducking starts
func (s *Sidechain) SetThreshold(threshold float64) {
	if math.IsNaN(threshold) || threshold < 0 {
		threshold = 0
	}
	s.threshold = threshold
}

// SetRatio sets the compression ratio
func (s *Sidechain) SetRatio(ratio float64) {
	s.ratio = NormalizeRatio(ratio)
}

// Ratio returns the normalized ratio
func (s *Sidechain) Ratio() float64 {
	return s.ratio
}

// SetAmount sets how much of the computed reduction is applied (0-1)
func (s *Sidechain) SetAmount(amount float64) {
	s.amount = clampAmount(amount)
}

// Follow feeds one control sample and returns the resulting gain
func (s *Sidechain) Follow(control float64) float64 {
	s.follower = UpdateFollower(control, s.follower, s.attackCoef, s.releaseCoef)
	s.gain = ComputeGain(s.follower, s.threshold, s.ratio, s.amount)
	return s.gain
}

// Process ducks sample by the control signal
func (s *Sidechain) Process(sample, control float64) float64 {
	return sample * s.Follow(control)
}

// Gain returns the most recent gain
func (s *Sidechain) Gain() float64 {
	return s.gain
}

// Follower returns the follower level
func (s *Sidechain) Follower() float64 {
	return s.follower
}

// GainReductionDB returns the current reduction in dB (0 or negative) for metering
func (s *Sidechain) GainReductionDB() float64 {
	return gain.LinearToDb(s.gain)
}

// Reset clears the follower
func (s *Sidechain) Reset() {
	s.follower = 0
	s.gain = 1.0
}

// Package envelope provides envelope generators for audio synthesis
package envelope

import (
	"math"

	"github.com/audiospace/atomspace/pkg/dsp"
)

// Stage represents the current envelope stage
type Stage int

const (
	// StageIdle represents a silent envelope waiting for a trigger
	StageIdle Stage = iota
	// StageTriggered is the sample on which the envelope was reset to 1.0
	StageTriggered
	// StageDecaying represents the exponential fall towards silence
	StageDecaying
)

// String returns the stage name
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageTriggered:
		return "Triggered"
	case StageDecaying:
		return "Decaying"
	default:
		return "Unknown"
	}
}

// Coefficient calculates the one-pole coefficient for a time constant:
// coef = exp(-1 / (time * sampleRate))
func Coefficient(timeSeconds, sampleRate float64) float64 {
	if timeSeconds <= 0.0 || sampleRate <= 0.0 {
		return 0.0
	}
	return math.Exp(-1.0 / (timeSeconds * sampleRate))
}

// Decay implements a one-pole exponential decay envelope with an
// instantaneous trigger. There is no attack ramp.
type Decay struct {
	sampleRate float64
	decay      float64
	decayCoef  float64

	stage Stage
	value float64
}

// NewDecay creates a new decay envelope
func NewDecay(sampleRate float64) *Decay {
	e := &Decay{
		sampleRate: sampleRate,
		decay:      dsp.DefaultKickDecay,
		stage:      StageIdle,
	}
	e.decayCoef = Coefficient(e.decay, sampleRate)
	return e
}

// SetDecay sets the decay time in seconds. The new coefficient applies from
// the next step, without smoothing.
func (e *Decay) SetDecay(seconds float64) {
	e.decay = seconds
	e.decayCoef = Coefficient(seconds, e.sampleRate)
}

// DecayCoefficient returns the per-sample multiplier
func (e *Decay) DecayCoefficient() float64 {
	return e.decayCoef
}

// Trigger resets the amplitude to exactly 1.0
func (e *Decay) Trigger() {
	e.value = 1.0
	e.stage = StageTriggered
}

// Step multiplies the amplitude by coef and snaps to zero below the floor
func (e *Decay) Step(coef float64) float64 {
	if e.value <= 0.0 {
		e.stage = StageIdle
		return 0.0
	}

	e.value *= coef
	if e.value < dsp.SnapFloor {
		e.value = 0.0
		e.stage = StageIdle
	} else {
		e.stage = StageDecaying
	}
	return e.value
}

// Next steps the envelope with the stored coefficient
func (e *Decay) Next() float64 {
	return e.Step(e.decayCoef)
}

// Value returns the current amplitude without advancing
func (e *Decay) Value() float64 {
	return e.value
}

// Stage returns the current envelope stage
func (e *Decay) Stage() Stage {
	return e.stage
}

// IsActive returns true if the envelope is generating output
func (e *Decay) IsActive() bool {
	return e.value > 0.0
}

// Reset immediately returns the envelope to idle
func (e *Decay) Reset() {
	e.value = 0.0
	e.stage = StageIdle
}

// ProcessMultiply multiplies buffer by envelope - no allocations
func (e *Decay) ProcessMultiply(buffer []float32) {
	for i := range buffer {
		buffer[i] *= float32(e.Next())
	}
}

// Package modulation provides tempo-locked modulators and frequency modulation
package modulation

import (
	"math"

	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/dsp/oscillator"
	"github.com/audiospace/atomspace/pkg/dsp/tempo"
)

// LFO is a sine modulator whose rate follows the tempo
type LFO struct {
	sampleRate    float64
	bpm           float64
	cyclesPerBeat float64

	// Phase in radians
	phase    float64
	phaseInc float64
}

// NewLFO creates an LFO running one cycle per beat at the default tempo
func NewLFO(sampleRate float64) *LFO {
	l := &LFO{sampleRate: sampleRate}
	l.SetTempo(dsp.DefaultBPM, 1)
	return l
}

// SetTempo locks the rate to bpm/60 * cyclesPerBeat
func (l *LFO) SetTempo(bpm, cyclesPerBeat float64) {
	if cyclesPerBeat <= 0 || math.IsNaN(cyclesPerBeat) {
		cyclesPerBeat = 1
	}
	l.bpm = tempo.SanitizeBPM(bpm)
	l.cyclesPerBeat = cyclesPerBeat
	l.phaseInc = oscillator.Increment(l.Frequency(), l.sampleRate)
}

// Frequency returns the modulation rate in Hz
func (l *LFO) Frequency() float64 {
	return tempo.BeatFrequency(l.bpm) * l.cyclesPerBeat
}

// Sync force-sets the phase, e.g. to π/2 so the next sample is the peak
func (l *LFO) Sync(phase float64) {
	l.phase = oscillator.Wrap(phase)
}

// Next returns sin(phase) and then advances
func (l *LFO) Next() float64 {
	out := math.Sin(l.phase)
	l.phase = oscillator.Wrap(l.phase + l.phaseInc)
	return out
}

// Phase returns the current phase in radians
func (l *LFO) Phase() float64 {
	return l.phase
}

// Reset sets the phase back to 0
func (l *LFO) Reset() {
	l.phase = 0
}

// Package tempo converts beats-per-minute into sample periods and provides a
// drift-free beat clock for sample-accurate triggering.
package tempo

import (
	"math"

	"github.com/audiospace/atomspace/pkg/dsp"
)

// SanitizeBPM substitutes the default tempo for non-positive or NaN values
func SanitizeBPM(bpm float64) float64 {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return dsp.DefaultBPM
	}
	return bpm
}

// SanitizeBeatsPerBar substitutes 4/4 for non-positive values
func SanitizeBeatsPerBar(beats float64) float64 {
	if beats <= 0 || math.IsNaN(beats) {
		return dsp.DefaultBeatsPerBar
	}
	return beats
}

// SamplesPerBeat returns sampleRate*60/bpm. bpm must already be sanitized.
func SamplesPerBeat(bpm, sampleRate float64) float64 {
	return sampleRate * dsp.SecondsPerMinute / bpm
}

// SamplesPerBar returns the bar period for the given meter
func SamplesPerBar(bpm, sampleRate, beatsPerBar float64) float64 {
	return SamplesPerBeat(bpm, sampleRate) * SanitizeBeatsPerBar(beatsPerBar)
}

// BeatFrequency returns the rate in Hz at which beats occur
func BeatFrequency(bpm float64) float64 {
	return bpm / dsp.SecondsPerMinute
}

// Tick checks the counter against the period and then counts one sample.
// When it fires the period is subtracted rather than the counter zeroed, so the
// fractional remainder carries into the next beat.
func Tick(counter, samplesPerBeat float64) (fired bool, next float64) {
	if counter >= samplesPerBeat {
		fired = true
		counter -= samplesPerBeat
	}
	return fired, counter + 1.0
}

// Clock is a free-running beat clock carried across processing blocks
type Clock struct {
	sampleRate     float64
	bpm            float64
	beatsPerBar    float64
	samplesPerBeat float64

	counter float64
	armed   bool
	beats   uint64
}

// NewClock creates an armed clock at the default tempo. Its first tick fires.
func NewClock(sampleRate float64) *Clock {
	c := &Clock{
		sampleRate:  sampleRate,
		beatsPerBar: dsp.DefaultBeatsPerBar,
		armed:       true,
	}
	c.SetTempo(dsp.DefaultBPM)
	return c
}

// SetTempo recomputes the beat period. The counter is left alone so a tempo
// change between blocks does not shift the beat grid.
func (c *Clock) SetTempo(bpm float64) {
	c.bpm = SanitizeBPM(bpm)
	c.samplesPerBeat = SamplesPerBeat(c.bpm, c.sampleRate)
}

// SetBeatsPerBar sets the meter used by BarPosition and SamplesPerBar
func (c *Clock) SetBeatsPerBar(beats float64) {
	c.beatsPerBar = SanitizeBeatsPerBar(beats)
}

// BPM returns the sanitized tempo
func (c *Clock) BPM() float64 {
	return c.bpm
}

// SamplesPerBeat returns the current beat period
func (c *Clock) SamplesPerBeat() float64 {
	return c.samplesPerBeat
}

// SamplesPerBar returns the current bar period
func (c *Clock) SamplesPerBar() float64 {
	return c.samplesPerBeat * c.beatsPerBar
}

// Tick advances the clock by one sample and reports whether a beat fired
func (c *Clock) Tick() bool {
	if c.armed {
		c.armed = false
		c.counter += 1.0
		c.beats++
		return true
	}

	var fired bool
	fired, c.counter = Tick(c.counter, c.samplesPerBeat)
	if fired {
		c.beats++
	}
	return fired
}

// Counter returns the samples elapsed since the last beat
func (c *Clock) Counter() float64 {
	return c.counter
}

// Beats returns the number of beats fired since the clock was created or reset
func (c *Clock) Beats() uint64 {
	return c.beats
}

// BarPosition returns the zero-based index of the last fired beat within its bar
func (c *Clock) BarPosition() int {
	if c.beats == 0 {
		return 0
	}
	perBar := uint64(c.beatsPerBar)
	if perBar == 0 {
		perBar = 1
	}
	return int((c.beats - 1) % perBar)
}

// Reset re-arms the clock so the next tick fires
func (c *Clock) Reset() {
	c.counter = 0
	c.beats = 0
	c.armed = true
}

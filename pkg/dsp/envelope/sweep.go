package envelope

import "github.com/audiospace/atomspace/pkg/dsp"

// Sweep is a one-pole multiplicative pitch glide. A trigger starts it at three
// times the target and every step moves it down towards the target, never below.
type Sweep struct {
	current float64
	target  float64
	glide   float64
}

// NewSweep creates a sweep resting at target
func NewSweep(target float64) *Sweep {
	return &Sweep{
		current: target,
		target:  target,
		glide:   dsp.SweepGlide,
	}
}

// Trigger restarts the sweep from 3x target, even mid-glide
func (s *Sweep) Trigger(target float64) {
	s.target = target
	s.current = target * dsp.SweepStartMultiple
}

// SetTarget moves the floor of the glide without restarting it
func (s *Sweep) SetTarget(target float64) {
	s.target = target
}

// Next advances the glide by one sample and returns the new frequency
func (s *Sweep) Next() float64 {
	if s.current > s.target {
		s.current *= s.glide
		if s.current < s.target {
			s.current = s.target
		}
	}
	return s.current
}

// Frequency returns the current frequency without advancing
func (s *Sweep) Frequency() float64 {
	return s.current
}

// Target returns the frequency the glide settles on
func (s *Sweep) Target() float64 {
	return s.target
}

// Settled reports whether the glide has reached its target
func (s *Sweep) Settled() bool {
	return s.current <= s.target
}

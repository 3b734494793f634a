package atom

import (
	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/dsp/envelope"
	"github.com/audiospace/atomspace/pkg/dsp/oscillator"
	"github.com/audiospace/atomspace/pkg/dsp/tempo"
	"github.com/audiospace/atomspace/pkg/framework/debug"
	"github.com/audiospace/atomspace/pkg/framework/param"
	"github.com/audiospace/atomspace/pkg/framework/plugin"
	"github.com/audiospace/atomspace/pkg/framework/process"
	"github.com/audiospace/atomspace/pkg/framework/voice"
)

// Kick inputs after the motion block
const (
	KickFreq = numMotionParams + iota
	KickAmp
	KickBPM
	KickBeatsPerBar
	KickTrigger
	KickDecay
)

const defaultKickRadius = 0.8

// Kick fires a decaying, downward-swept sine on every beat and on a rising
// edge of its trigger input
type Kick struct {
	*base

	clock *tempo.Clock
	env   *envelope.Decay
	sweep *envelope.Sweep
	phase float64

	lastTrigger float64
}

// NewKick creates and registers a kick voice
func NewKick(reg *voice.Registry, logger *debug.Logger) *Kick {
	k := &Kick{
		base: newBase(KindKick, plugin.Info{
			ID:       "atomspace.kick",
			Name:     "Kick",
			Version:  "1.0.0",
			Vendor:   "AudioSpace",
			Category: "Instrument|Drum",
		}, reg, logger, defaultKickRadius),
	}

	k.addParameters(append(motionParameters(defaultKickRadius),
		freqParameter(KickFreq, "Frequency", "freq", dsp.DefaultKickFreq),
		param.AmplitudeParameter(KickAmp, 0.3).Build(),
		param.BPMParameter(KickBPM, dsp.DefaultBPM).Build(),
		param.BeatsPerBarParameter(KickBeatsPerBar, dsp.DefaultBeatsPerBar).Build(),
		param.TriggerParameter(KickTrigger, "trigger").Build(),
		decayParameter(KickDecay, "Decay", "decay"),
	)...)

	k.OnInitialize(func(sampleRate float64, maxBlockSize int) error {
		k.clock = tempo.NewClock(sampleRate)
		k.env = envelope.NewDecay(sampleRate)
		k.sweep = envelope.NewSweep(dsp.DefaultKickFreq)
		return nil
	})
	k.OnReset(k.reset)
	return k
}

func (k *Kick) reset() {
	if k.clock == nil {
		return
	}
	k.clock.Reset()
	k.env.Reset()
	k.sweep = envelope.NewSweep(k.sweep.Target())
	k.phase = 0
	k.lastTrigger = 0
}

// ProcessAudio renders one block of kick
func (k *Kick) ProcessAudio(ctx *process.Context) {
	if !k.resolve(ctx) {
		return
	}
	v := k.values
	sr := k.SampleRate()

	freq := v[KickFreq]
	amp := v[KickAmp]
	k.clock.SetTempo(k.tempo(v[KickBPM]))
	k.clock.SetBeatsPerBar(v[KickBeatsPerBar])
	k.env.SetDecay(v[KickDecay])
	k.sweep.SetTarget(freq)

	// Manual trigger on a rising edge, at the start of the block
	trigger := v[KickTrigger]
	manual := trigger > 0 && k.lastTrigger <= 0
	k.lastTrigger = trigger

	for i := range ctx.Output {
		if k.clock.Tick() || manual {
			manual = false
			k.env.Trigger()
			k.sweep.Trigger(freq)
		}

		e := k.env.Next()
		f := k.sweep.Next()

		var s float64
		s, k.phase = oscillator.Advance(k.phase, f, sr)
		ctx.Output[i] = float32(s * e * amp)
	}
}

// Envelope returns the current envelope level
func (k *Kick) Envelope() float64 {
	return k.env.Value()
}

// Frequency returns the current swept frequency
func (k *Kick) Frequency() float64 {
	return k.sweep.Frequency()
}

// Beats returns how many clock beats have fired
func (k *Kick) Beats() uint64 {
	return k.clock.Beats()
}

// BarPosition returns the beat index within the bar of the last beat
func (k *Kick) BarPosition() int {
	return k.clock.BarPosition()
}

// Phase returns the kick oscillator phase
func (k *Kick) Phase() float64 {
	return k.phase
}

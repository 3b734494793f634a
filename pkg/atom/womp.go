package atom

import (
	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/dsp/dynamics"
	"github.com/audiospace/atomspace/pkg/dsp/envelope"
	"github.com/audiospace/atomspace/pkg/dsp/modulation"
	"github.com/audiospace/atomspace/pkg/dsp/oscillator"
	"github.com/audiospace/atomspace/pkg/dsp/tempo"
	"github.com/audiospace/atomspace/pkg/framework/debug"
	"github.com/audiospace/atomspace/pkg/framework/param"
	"github.com/audiospace/atomspace/pkg/framework/plugin"
	"github.com/audiospace/atomspace/pkg/framework/process"
	"github.com/audiospace/atomspace/pkg/framework/voice"
)

// Womp inputs after the motion block
const (
	WompKickFreq = numMotionParams + iota
	WompBassFreq
	WompAmp
	WompBPM
	WompKickDecay
	WompModDepth
	WompDistortion
	WompAttack
	WompRelease
	WompSidechain
	WompThreshold
	WompRatio
)

const defaultWompRadius = 0.8

// Womp plays a kick on every beat over an FM bass that is ducked by the
// kick's envelope. The bass modulator runs two cycles per beat and is
// re-phased to its peak on each kick.
type Womp struct {
	*base

	clock     *tempo.Clock
	env       *envelope.Decay
	sweep     *envelope.Sweep
	kickPhase float64

	lfo       *modulation.LFO
	fm        *modulation.FM
	sidechain *dynamics.Sidechain
}

// NewWomp creates and registers a womp voice
func NewWomp(reg *voice.Registry, logger *debug.Logger) *Womp {
	w := &Womp{
		base: newBase(KindWomp, plugin.Info{
			ID:       "atomspace.womp",
			Name:     "Womp",
			Version:  "1.0.0",
			Vendor:   "AudioSpace",
			Category: "Instrument|Drum",
		}, reg, logger, defaultWompRadius),
	}

	w.addParameters(append(motionParameters(defaultWompRadius),
		freqParameter(WompKickFreq, "Kick Frequency", "kick_freq", dsp.DefaultKickFreq),
		freqParameter(WompBassFreq, "Bass Frequency", "bass_freq", dsp.DefaultBassFreq),
		param.AmplitudeParameter(WompAmp, 0.2).Build(),
		param.BPMParameter(WompBPM, dsp.DefaultBPM).Build(),
		decayParameter(WompKickDecay, "Kick Decay", "kick_decay"),
		modDepthParameter(WompModDepth),
		distortionParameter(WompDistortion),
		param.TimeParameter(WompAttack, "Attack", 0.0001, 1, dsp.DefaultAttack).ShortName("attack").Build(),
		param.TimeParameter(WompRelease, "Release", 0.001, 5, dsp.DefaultRelease).ShortName("release").Build(),
		param.AmountParameter(WompSidechain, "Sidechain", 1, dsp.DefaultSidechain).ShortName("sidechain").Build(),
		param.LevelParameter(WompThreshold, "Threshold", dsp.DefaultThreshold).ShortName("threshold").Build(),
		param.RatioParameter(WompRatio, "Ratio", 0.01, 100, dsp.DefaultRatio).ShortName("ratio").Build(),
	)...)

	w.OnInitialize(func(sampleRate float64, maxBlockSize int) error {
		w.clock = tempo.NewClock(sampleRate)
		w.env = envelope.NewDecay(sampleRate)
		w.sweep = envelope.NewSweep(dsp.DefaultKickFreq)
		w.lfo = modulation.NewLFO(sampleRate)
		w.lfo.SetTempo(dsp.DefaultBPM, dsp.WompModCyclesOnBeat)
		w.fm = modulation.NewFM(sampleRate, dsp.DefaultBassFreq, dsp.DefaultModDepth, dsp.DefaultDistortion)
		w.sidechain = dynamics.NewSidechain(sampleRate)
		return nil
	})
	w.OnReset(w.reset)
	return w
}

func (w *Womp) reset() {
	if w.clock == nil {
		return
	}
	w.clock.Reset()
	w.env.Reset()
	w.sweep = envelope.NewSweep(w.sweep.Target())
	w.kickPhase = 0
	w.lfo.Reset()
	w.fm.Reset()
	w.sidechain.Reset()
}

// ProcessAudio renders one block of kick plus ducked bass
func (w *Womp) ProcessAudio(ctx *process.Context) {
	if !w.resolve(ctx) {
		return
	}
	v := w.values
	sr := w.SampleRate()

	bpm := w.tempo(v[WompBPM])
	kickFreq := v[WompKickFreq]
	amp := v[WompAmp]

	w.clock.SetTempo(bpm)
	w.env.SetDecay(v[WompKickDecay])
	w.sweep.SetTarget(kickFreq)
	w.lfo.SetTempo(bpm, dsp.WompModCyclesOnBeat)
	w.fm.SetBaseFrequency(v[WompBassFreq])
	w.fm.SetDepth(v[WompModDepth])
	w.fm.SetDistortion(v[WompDistortion])
	w.sidechain.SetTimes(v[WompAttack], v[WompRelease])
	w.sidechain.SetAmount(v[WompSidechain])
	w.sidechain.SetThreshold(v[WompThreshold])
	w.sidechain.SetRatio(v[WompRatio])

	kickLevel := amp * dsp.KickOutputScale
	bassLevel := amp * dsp.BassOutputScale

	for i := range ctx.Output {
		if w.clock.Tick() {
			// Bass modulation peaks on the kick
			w.lfo.Sync(dsp.HalfPi)
			w.env.Trigger()
			w.sweep.Trigger(kickFreq)
		}

		e := w.env.Next()
		f := w.sweep.Next()

		var kick float64
		kick, w.kickPhase = oscillator.Advance(w.kickPhase, f, sr)
		kick *= e * kickLevel

		m := w.lfo.Next()
		bass := w.fm.Next(m)
		g := w.sidechain.Follow(e)

		ctx.Output[i] = float32(kick + g*bass*bassLevel)
	}
}

// Envelope returns the kick envelope level
func (w *Womp) Envelope() float64 {
	return w.env.Value()
}

// Gain returns the bass gain after sidechain ducking
func (w *Womp) Gain() float64 {
	return w.sidechain.Gain()
}

// GainReductionDB returns the bass ducking in dB
func (w *Womp) GainReductionDB() float64 {
	return w.sidechain.GainReductionDB()
}

// Beats returns how many kicks the clock has fired
func (w *Womp) Beats() uint64 {
	return w.clock.Beats()
}

// ModulationPhase returns the bass modulator phase in radians
func (w *Womp) ModulationPhase() float64 {
	return w.lfo.Phase()
}

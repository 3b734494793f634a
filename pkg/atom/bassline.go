package atom

import (
	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/dsp/distortion"
	"github.com/audiospace/atomspace/pkg/dsp/modulation"
	"github.com/audiospace/atomspace/pkg/framework/debug"
	"github.com/audiospace/atomspace/pkg/framework/param"
	"github.com/audiospace/atomspace/pkg/framework/plugin"
	"github.com/audiospace/atomspace/pkg/framework/process"
	"github.com/audiospace/atomspace/pkg/framework/voice"
)

// Bassline inputs after the motion block
const (
	BassFreq = numMotionParams + iota
	BassAmp
	BassBPM
	BassModDepth
	BassDistortion
	BassPeakSource
)

const defaultBassRadius = 0.6

// Bassline is an FM bass whose modulator runs one cycle per beat.
// Near modulation peaks the carrier picks up 2nd and 3rd harmonics in
// proportion to how far it has been pulled off pitch.
type Bassline struct {
	*base

	lfo *modulation.LFO
	fm  *modulation.FM
}

// NewBassline creates and registers a bassline voice
func NewBassline(reg *voice.Registry, logger *debug.Logger) *Bassline {
	b := &Bassline{
		base: newBase(KindBassline, plugin.Info{
			ID:       "atomspace.bassline",
			Name:     "Bassline",
			Version:  "1.0.0",
			Vendor:   "AudioSpace",
			Category: "Instrument|Synth",
		}, reg, logger, defaultBassRadius),
	}

	b.addParameters(append(motionParameters(defaultBassRadius),
		freqParameter(BassFreq, "Frequency", "freq", dsp.DefaultBassFreq),
		param.AmplitudeParameter(BassAmp, 0.2).Build(),
		param.BPMParameter(BassBPM, dsp.DefaultBPM).Build(),
		modDepthParameter(BassModDepth),
		distortionParameter(BassDistortion),
		peakSourceParameter(BassPeakSource),
	)...)

	b.OnInitialize(func(sampleRate float64, maxBlockSize int) error {
		b.lfo = modulation.NewLFO(sampleRate)
		b.fm = modulation.NewFM(sampleRate, dsp.DefaultBassFreq, dsp.DefaultModDepth, dsp.DefaultDistortion)
		return nil
	})
	b.OnReset(func() {
		if b.lfo != nil {
			b.lfo.Reset()
			b.fm.Reset()
		}
	})
	return b
}

// ProcessAudio renders one block of bass
func (b *Bassline) ProcessAudio(ctx *process.Context) {
	if !b.resolve(ctx) {
		return
	}
	v := b.values

	b.lfo.SetTempo(b.tempo(v[BassBPM]), 1)
	b.fm.SetBaseFrequency(v[BassFreq])
	b.fm.SetDepth(v[BassModDepth])
	b.fm.SetDistortion(v[BassDistortion])
	b.fm.SetPeakSource(distortion.PeakSource(v[BassPeakSource]))

	amp := v[BassAmp]
	for i := range ctx.Output {
		m := b.lfo.Next()
		ctx.Output[i] = float32(b.fm.Next(m) * amp)
	}
}

// Frequency returns the carrier frequency used for the last sample
func (b *Bassline) Frequency() float64 {
	return b.fm.LastFrequency()
}

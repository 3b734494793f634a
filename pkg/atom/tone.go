package atom

import (
	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/dsp/oscillator"
	"github.com/audiospace/atomspace/pkg/framework/debug"
	"github.com/audiospace/atomspace/pkg/framework/param"
	"github.com/audiospace/atomspace/pkg/framework/plugin"
	"github.com/audiospace/atomspace/pkg/framework/process"
	"github.com/audiospace/atomspace/pkg/framework/voice"
)

// Tone inputs after the motion block
const (
	ToneFreq = numMotionParams + iota
	ToneAmp
)

const defaultToneRadius = 0.5

// Tone is the plain sine voice
type Tone struct {
	*base
	osc *oscillator.Oscillator
}

// NewTone creates and registers a tone voice
func NewTone(reg *voice.Registry, logger *debug.Logger) *Tone {
	t := &Tone{
		base: newBase(KindTone, plugin.Info{
			ID:       "atomspace.tone",
			Name:     "Tone",
			Version:  "1.0.0",
			Vendor:   "AudioSpace",
			Category: "Instrument|Synth",
		}, reg, logger, defaultToneRadius),
	}

	t.addParameters(append(motionParameters(defaultToneRadius),
		freqParameter(ToneFreq, "Frequency", "freq", dsp.DefaultToneFreq),
		param.AmplitudeParameter(ToneAmp, 0.1).Build(),
	)...)

	t.OnInitialize(func(sampleRate float64, maxBlockSize int) error {
		t.osc = oscillator.New(sampleRate)
		return nil
	})
	t.OnReset(func() {
		if t.osc != nil {
			t.osc.Reset()
		}
	})
	return t
}

// ProcessAudio renders sin(phase)*amp
func (t *Tone) ProcessAudio(ctx *process.Context) {
	if !t.resolve(ctx) {
		return
	}
	v := t.values

	t.osc.SetFrequency(v[ToneFreq])
	amp := v[ToneAmp]
	for i := range ctx.Output {
		ctx.Output[i] = float32(t.osc.Sine() * amp)
	}
}

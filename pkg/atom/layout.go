package atom

import (
	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/dsp/distortion"
	"github.com/audiospace/atomspace/pkg/framework/param"
)

// Motion inputs shared by every positioned voice
const (
	ParamX = iota
	ParamY
	ParamZ
	ParamVX
	ParamVY
	ParamVZ
	ParamRadius

	numMotionParams
)

// Frequency limits for voice inputs
const (
	minFreq = 1.0
	maxFreq = 20000.0
)

func motionParameters(radius float64) []*param.Parameter {
	return []*param.Parameter{
		param.PositionParameter(ParamX, "x").Build(),
		param.PositionParameter(ParamY, "y").Build(),
		param.PositionParameter(ParamZ, "z").Build(),
		param.PositionParameter(ParamVX, "vx").Build(),
		param.PositionParameter(ParamVY, "vy").Build(),
		param.PositionParameter(ParamVZ, "vz").Build(),
		param.RadiusParameter(ParamRadius, radius).Build(),
	}
}

func freqParameter(id uint32, name, short string, defaultVal float64) *param.Parameter {
	return param.FrequencyParameter(id, name, minFreq, maxFreq, defaultVal).
		ShortName(short).
		Build()
}

func peakSourceParameter(id uint32) *param.Parameter {
	return param.Choice(id, "Peak Source", []param.ChoiceOption{
		{Value: float64(distortion.PeakFromModulator), Name: "modulator", Aliases: []string{"mod"}},
		{Value: float64(distortion.PeakFromCarrier), Name: "carrier"},
	}).ShortName("peak_source").Build()
}

func decayParameter(id uint32, name, short string) *param.Parameter {
	return param.TimeParameter(id, name, 0.001, 10, dsp.DefaultKickDecay).
		ShortName(short).
		Build()
}

func modDepthParameter(id uint32) *param.Parameter {
	return param.AmountParameter(id, "Modulation Depth", 1, dsp.DefaultModDepth).
		ShortName("mod_depth").
		Build()
}

func distortionParameter(id uint32) *param.Parameter {
	return param.AmountParameter(id, "Distortion", 4, dsp.DefaultDistortion).
		ShortName("distortion").
		Build()
}

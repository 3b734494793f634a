package atom

import (
	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/framework/debug"
	"github.com/audiospace/atomspace/pkg/framework/param"
	"github.com/audiospace/atomspace/pkg/framework/plugin"
	"github.com/audiospace/atomspace/pkg/framework/process"
	"github.com/audiospace/atomspace/pkg/framework/voice"
)

// SpaceSize is the only Space input
const SpaceSize = 0

// Space outputs the number of active voices in its registry on every sample.
// It is not registered itself and so never counts itself.
type Space struct {
	*base
}

// NewSpace creates a space counter over reg
func NewSpace(reg *voice.Registry, logger *debug.Logger) *Space {
	s := &Space{
		base: newBase(KindSpace, plugin.Info{
			ID:       "atomspace.space",
			Name:     "Space",
			Version:  "1.0.0",
			Vendor:   "AudioSpace",
			Category: "Utility",
		}, reg, logger, 0),
	}
	s.addParameters(
		param.New(SpaceSize, "Size").
			Range(0.001, 1e6).
			Default(dsp.DefaultSpaceSize).
			Positive().
			Build(),
	)
	return s
}

// ProcessAudio fills the block with the active voice count
func (s *Space) ProcessAudio(ctx *process.Context) {
	if !s.resolve(ctx) {
		return
	}
	dsp.Fill(ctx.Output, float32(s.registry.ActiveCount()))
}

// Size returns the resolved size of the space
func (s *Space) Size() float64 {
	return s.values[SpaceSize]
}

// Package atom implements the voice kinds that populate an atom space:
// a plain sine tone, a tempo-locked kick, an FM bassline, the combined
// womp voice and the space counter.
//
// Every voice registers a record with a voice.Registry when it is created
// and removes it on Close. ProcessAudio reads the block's positional inputs
// from the process context, resolves them through the voice's parameter
// layout and renders one mono block without allocating.
package atom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/audiospace/atomspace/pkg/framework/debug"
	"github.com/audiospace/atomspace/pkg/framework/param"
	"github.com/audiospace/atomspace/pkg/framework/plugin"
	"github.com/audiospace/atomspace/pkg/framework/process"
	"github.com/audiospace/atomspace/pkg/framework/voice"
)

// ErrUnknownKind is returned for a voice kind name that is not recognised
var ErrUnknownKind = errors.New("unknown voice kind")

// Data and Vec3 are the registry's record types
type (
	Data = voice.Data
	Vec3 = voice.Vec3
)

// Kind selects a voice implementation at construction
type Kind int

const (
	KindTone Kind = iota
	KindKick
	KindBassline
	KindWomp
	KindSpace
)

var kindNames = [...]string{
	KindTone:     "tone",
	KindKick:     "kick",
	KindBassline: "bassline",
	KindWomp:     "womp",
	KindSpace:    "space",
}

// String returns the lower-case kind name used in patch files
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// counted reports whether voices of this kind register with the registry.
// The space counter observes the registry without appearing in it.
func (k Kind) counted() bool {
	return k != KindSpace
}

// Audible reports whether the output of this kind is a signal. The space
// counter outputs a count and stays off the mix.
func (k Kind) Audible() bool {
	return k != KindSpace
}

// ParseKind converts a kind name to a Kind
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "bass":
		return KindBassline, nil
	case "wompwomp", "womp_womp":
		return KindWomp, nil
	case "atom", "sine":
		return KindTone, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Kinds returns every voice kind in declaration order
func Kinds() []Kind {
	return []Kind{KindTone, KindKick, KindBassline, KindWomp, KindSpace}
}

// Voice is a registered processor
type Voice interface {
	plugin.Processor
	Kind() Kind
	Data() *Data
}

// New creates and initializes a voice of the given kind.
// A nil logger uses the package default.
func New(kind Kind, reg *voice.Registry, sampleRate float64, maxBlockSize int, logger *debug.Logger) (Voice, error) {
	if reg == nil {
		return nil, errors.New("atom: nil registry")
	}

	var v Voice
	switch kind {
	case KindTone:
		v = NewTone(reg, logger)
	case KindKick:
		v = NewKick(reg, logger)
	case KindBassline:
		v = NewBassline(reg, logger)
	case KindWomp:
		v = NewWomp(reg, logger)
	case KindSpace:
		v = NewSpace(reg, logger)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}

	if err := v.Initialize(sampleRate, maxBlockSize); err != nil {
		v.Close()
		return nil, fmt.Errorf("initialize %s: %w", kind, err)
	}
	return v, nil
}

// base carries what every voice shares: its layout, registry record and
// the resolved inputs of the current block
type base struct {
	*plugin.BaseProcessor
	kind     Kind
	data     *Data
	registry *voice.Registry
	logger   *debug.Logger

	// Resolved inputs for the current block, one per layout position
	values []float64
	closed bool
}

func newBase(kind Kind, info plugin.Info, reg *voice.Registry, logger *debug.Logger, radius float64) *base {
	if logger == nil {
		logger = debug.Default()
	}
	b := &base{
		BaseProcessor: plugin.NewBaseProcessor(info),
		kind:          kind,
		data:          voice.NewData(kind.String(), radius),
		registry:      reg,
		logger:        logger,
	}
	if kind.counted() {
		reg.Register(b.data)
		logger.Debug("%s voice %d registered", kind, b.data.ID)
	}
	return b
}

// addParameters installs the layout and sizes the input scratch
func (b *base) addParameters(params ...*param.Parameter) {
	b.Parameters().Add(params...)
	b.values = make([]float64, b.Parameters().Count())
	b.Parameters().Defaults(b.values)
}

// Kind returns the voice kind
func (b *base) Kind() Kind {
	return b.kind
}

// Data returns the registry record
func (b *base) Data() *Data {
	return b.data
}

// Values returns the inputs resolved for the last block
func (b *base) Values() []float64 {
	return b.values
}

// resolve sanitizes the block inputs and writes the motion metadata.
// It reports false when the voice is inactive; the output is then silent.
func (b *base) resolve(ctx *process.Context) bool {
	b.Parameters().Resolve(ctx.Inputs, b.values)
	if len(b.values) > ParamRadius {
		b.data.SetMotion(
			Vec3{X: b.values[ParamX], Y: b.values[ParamY], Z: b.values[ParamZ]},
			Vec3{X: b.values[ParamVX], Y: b.values[ParamVY], Z: b.values[ParamVZ]},
			b.values[ParamRadius],
		)
	}
	b.data.Advance(ctx.NumSamples(), b.SampleRate())

	if !b.data.Active() {
		ctx.Clear()
		return false
	}
	return true
}

// tempo offers the voice's bpm input to the registry and returns the tempo
// the voice should follow
func (b *base) tempo(bpm float64) float64 {
	b.registry.WriteTempo(bpm)
	return b.registry.Tempo()
}

// Close unregisters the voice. Calling it again does nothing.
func (b *base) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if id := b.data.ID; id != 0 {
		b.registry.Unregister(id)
		b.logger.Debug("%s voice %d unregistered", b.kind, id)
	}
	return nil
}

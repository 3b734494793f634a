// Package engine hosts a patch of voices: it drives each voice once per
// block, sums them into a mono master bus and publishes a status snapshot.
//
// ProcessBlock, Read, Frames and Render all advance the same audio clock
// and must be driven from one goroutine at a time. The control methods
// (SetTempo, SetMasterGain, SetParam, ToggleVoice, Trigger) and Status are
// safe to call from any goroutine.
package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/audiospace/atomspace/internal/config"
	"github.com/audiospace/atomspace/internal/render"
	"github.com/audiospace/atomspace/pkg/atom"
	"github.com/audiospace/atomspace/pkg/dsp/mix"
	"github.com/audiospace/atomspace/pkg/framework/debug"
	"github.com/audiospace/atomspace/pkg/framework/dsp"
	"github.com/audiospace/atomspace/pkg/framework/param"
	"github.com/audiospace/atomspace/pkg/framework/process"
	"github.com/audiospace/atomspace/pkg/framework/voice"
)

const (
	dcCutoffHz     = 10.0
	statusInterval = 20 * time.Millisecond

	// tempoParam is the short name of every voice tempo input
	tempoParam = "bpm"
)

// ErrNoVoice is returned by the control methods for an out-of-range index
var ErrNoVoice = errors.New("no such voice")

// slot is one hosted voice and the context it renders into
type slot struct {
	voice   atom.Voice
	ctx     *process.Context
	trigger *param.Parameter // nil unless the voice has a trigger input
	audible bool             // summed into the master bus
	pending atomic.Bool      // one-block trigger requested by the control surface
}

// VoiceInfo describes a hosted voice
type VoiceInfo struct {
	Index int    `json:"index"`
	ID    int32  `json:"id"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
}

// Engine renders a patch block by block
type Engine struct {
	logger   *debug.Logger
	registry *voice.Registry
	slots    []*slot

	sampleRate float64
	blockSize  int

	master   []float32
	chain    *dsp.Chain
	gain     *dsp.GainAdapter
	profiler *debug.AudioProcessProfiler
	analyzer *debug.AudioAnalyzer

	block   uint64
	pending []float32 // rendered samples not yet handed out by Read

	meter       meter
	statusEvery uint64
	status      atomic.Pointer[Status]

	frames sync.WaitGroup // running Frames goroutines
	closed bool
}

// New builds the registry and every voice of the patch.
// A nil logger uses the package default.
func New(cfg config.Config, patch config.Patch, logger *debug.Logger) (*Engine, error) {
	if logger == nil {
		logger = debug.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(patch.Voices) == 0 {
		return nil, fmt.Errorf("%w: %s has no voices", config.ErrPatch, patch.Name)
	}

	reg := voice.NewRegistry(cfg.TempoPolicy)
	bpm := cfg.BPM
	if patch.BPM > 0 {
		bpm = patch.BPM
	}
	reg.SetTempo(bpm)
	if patch.BeatsPerBar > 0 {
		reg.SetBeatsPerBar(patch.BeatsPerBar)
	}

	e := &Engine{
		logger:     logger,
		registry:   reg,
		sampleRate: cfg.SampleRate,
		blockSize:  cfg.BlockSize,
		master:     make([]float32, cfg.BlockSize),
		profiler:   debug.NewAudioProcessProfiler(cfg.SampleRate, cfg.BlockSize),
		analyzer:   debug.NewAudioAnalyzer(),
	}
	e.gain = dsp.NewGainAdapter(cfg.GainDB)
	chain, err := dsp.NewBuilder("master").
		If(cfg.DCBlock, "dc", dsp.NewDCBlockerAdapter(dcCutoffHz, cfg.SampleRate)).
		WithProcessor("gain", e.gain).
		If(cfg.Clip, "clip", dsp.NewClipAdapter(1)).
		Build()
	if err != nil {
		return nil, err
	}
	e.chain = chain
	e.statusEvery = uint64(math.Ceil(float64(statusInterval) * cfg.SampleRate / float64(time.Second) / float64(cfg.BlockSize)))
	if e.statusEvery == 0 {
		e.statusEvery = 1
	}

	for i, vp := range patch.Voices {
		s, err := e.addVoice(vp)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("voice %d (%s): %w", i+1, vp.Kind, err)
		}
		e.slots = append(e.slots, s)
	}

	// Voice tempo inputs start at the host tempo
	e.syncVoiceTempo(reg.Tempo(), patch)

	e.publish()
	logger.Info("engine: %d voices at %.0f Hz, block %d, %.1f bpm (%s)",
		len(e.slots), cfg.SampleRate, cfg.BlockSize, reg.Tempo(), reg.Policy())
	logger.Debug("engine: %s", e.chain)
	return e, nil
}

func (e *Engine) addVoice(vp config.VoicePatch) (*slot, error) {
	v, err := atom.New(vp.Kind, e.registry, e.sampleRate, e.blockSize, e.logger)
	if err != nil {
		return nil, err
	}

	params := v.Parameters()
	for _, name := range vp.ParamNames() {
		p := params.ByName(name)
		if p == nil {
			v.Close()
			return nil, fmt.Errorf("%w: unknown parameter %q", config.ErrPatch, name)
		}
		if name == tempoParam && e.registry.Policy() == voice.TempoShared {
			v.Close()
			return nil, fmt.Errorf("%w: voice bpm has no effect under the %s tempo policy, set the patch bpm instead",
				config.ErrPatch, voice.TempoShared)
		}
		value := vp.Params[name]
		if value.IsText() {
			plain, err := p.ParseValue(value.Text)
			if err != nil {
				v.Close()
				return nil, fmt.Errorf("%w: %s: %v", config.ErrPatch, name, err)
			}
			p.SetPlainValue(plain)
		} else {
			p.SetPlainValue(value.Number)
		}
	}

	if !vp.Active {
		if !e.registry.SetActive(v.Data().ID, false) {
			e.logger.Warn("engine: %s voice is not registered and cannot start inactive", vp.Kind)
		}
	}

	s := &slot{
		voice:   v,
		ctx:     process.NewContext(e.sampleRate, e.blockSize, int(params.Count())),
		audible: vp.Kind.Audible(),
	}
	if p := params.ByName("trigger"); p != nil {
		s.trigger = p
	}
	return s, nil
}

// syncVoiceTempo writes bpm into every voice tempo input the patch left unset
func (e *Engine) syncVoiceTempo(bpm float64, patch config.Patch) {
	for i, s := range e.slots {
		if _, set := patch.Voices[i].Params[tempoParam]; set {
			continue
		}
		if p := s.voice.Parameters().ByName(tempoParam); p != nil {
			p.SetPlainValue(bpm)
		}
		if patch.BeatsPerBar > 0 {
			if _, set := patch.Voices[i].Params["beats_per_bar"]; !set {
				if p := s.voice.Parameters().ByName("beats_per_bar"); p != nil {
					p.SetPlainValue(patch.BeatsPerBar)
				}
			}
		}
	}
}

// SampleRate returns the engine sample rate
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// BlockSize returns the number of samples ProcessBlock renders
func (e *Engine) BlockSize() int {
	return e.blockSize
}

// Registry returns the voice registry
func (e *Engine) Registry() *voice.Registry {
	return e.registry
}

// Voices describes the hosted voices in patch order
func (e *Engine) Voices() []VoiceInfo {
	out := make([]VoiceInfo, len(e.slots))
	for i, s := range e.slots {
		out[i] = VoiceInfo{
			Index: i,
			ID:    s.voice.Data().ID,
			Kind:  s.voice.Kind().String(),
			Name:  s.voice.Info().Name,
		}
	}
	return out
}

// Voice returns the voice at index
func (e *Engine) Voice(index int) (atom.Voice, bool) {
	if index < 0 || index >= len(e.slots) {
		return nil, false
	}
	return e.slots[index].voice, true
}

// ProcessBlock renders one block of every voice into the master bus and
// returns it. The slice is reused by the next call.
func (e *Engine) ProcessBlock() []float32 {
	start := time.Now()

	for i := range e.master {
		e.master[i] = 0
	}

	for _, s := range e.slots {
		in := s.ctx.InputBuffer()
		s.voice.Parameters().Snapshot(in)
		if s.trigger != nil && s.pending.Swap(false) {
			in[s.trigger.ID] = 1
		}
		s.ctx.SetBlockSize(e.blockSize)

		s.voice.ProcessAudio(s.ctx)
		if s.audible {
			mix.Accumulate(e.master, s.ctx.Output, 1)
		}
		s.ctx.Advance()
	}

	e.chain.Process(e.master)

	e.profiler.Record(time.Since(start))
	e.meter.add(e.analyzer.Analyze(e.master), len(e.master))
	e.block++
	if e.block%e.statusEvery == 0 {
		e.publish()
	}
	return e.master
}

// Read renders float32 little-endian mono samples into p
func (e *Engine) Read(p []byte) (int, error) {
	if e.closed {
		return 0, io.EOF
	}
	if len(p) < 4 {
		return 0, io.ErrShortBuffer
	}

	n := 0
	for n+4 <= len(p) {
		if len(e.pending) == 0 {
			e.pending = e.ProcessBlock()
		}
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(e.pending[0]))
		e.pending = e.pending[1:]
		n += 4
	}
	return n, nil
}

// Render writes d of audio to w as a 16-bit WAV file
func (e *Engine) Render(w io.Writer, channels int, d time.Duration) error {
	if err := render.Render(w, e, channels, d); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	st := e.Status()
	e.logger.Info("engine: rendered %v, %d blocks, peak %.3f, load %.2f%%",
		d, st.Block, st.Peak, st.CPULoad)
	return nil
}

// SetTempo sets the host tempo and the tempo input of every voice that has one
func (e *Engine) SetTempo(bpm float64) {
	e.registry.SetTempo(bpm)
	bpm = e.registry.Tempo()
	for _, s := range e.slots {
		if p := s.voice.Parameters().ByName(tempoParam); p != nil {
			p.SetPlainValue(bpm)
		}
	}
	e.logger.Debug("engine: tempo %.1f bpm", bpm)
}

// Tempo returns the shared tempo
func (e *Engine) Tempo() float64 {
	return e.registry.Tempo()
}

// SetMasterGain sets the master bus gain in dB
func (e *Engine) SetMasterGain(db float64) {
	e.gain.SetDb(db)
	e.logger.Debug("engine: master gain %.1f dB", e.gain.Db())
}

// MasterGain returns the master bus gain in dB
func (e *Engine) MasterGain() float64 {
	return e.gain.Db()
}

// SetParam sets a voice input by short name. The value is sanitized by the
// parameter and takes effect at the next block.
func (e *Engine) SetParam(index int, name string, value float64) error {
	p, err := e.param(index, name)
	if err != nil {
		return err
	}
	e.set(p, value)
	return nil
}

// SetParamText parses text with the parameter's own parser ("2 kHz", "carrier")
func (e *Engine) SetParamText(index int, name, text string) error {
	p, err := e.param(index, name)
	if err != nil {
		return err
	}
	plain, err := p.ParseValue(text)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	e.set(p, plain)
	return nil
}

// set writes a parameter. Under the shared policy a voice tempo input is
// the host tempo, so writing one retimes every voice.
func (e *Engine) set(p *param.Parameter, value float64) {
	if p.ShortName == tempoParam && e.registry.Policy() == voice.TempoShared {
		e.SetTempo(value)
		return
	}
	p.SetPlainValue(value)
}

// Param returns the current value of a voice input
func (e *Engine) Param(index int, name string) (float64, error) {
	p, err := e.param(index, name)
	if err != nil {
		return 0, err
	}
	return p.GetPlainValue(), nil
}

func (e *Engine) param(index int, name string) (*param.Parameter, error) {
	v, ok := e.Voice(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoVoice, index)
	}
	p := v.Parameters().ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%s has no parameter %q", v.Kind(), name)
	}
	return p, nil
}

// ToggleVoice flips a voice between active and silent and returns the new state
func (e *Engine) ToggleVoice(index int) (bool, error) {
	v, ok := e.Voice(index)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrNoVoice, index)
	}
	active, ok := e.registry.Toggle(v.Data().ID)
	if !ok {
		return false, fmt.Errorf("%s voice cannot be toggled", v.Kind())
	}
	e.logger.Debug("engine: voice %d (%s) active=%t", index, v.Kind(), active)
	return active, nil
}

// Trigger fires a voice's manual trigger on the next block
func (e *Engine) Trigger(index int) error {
	if index < 0 || index >= len(e.slots) {
		return fmt.Errorf("%w: %d", ErrNoVoice, index)
	}
	s := e.slots[index]
	if s.trigger == nil {
		return fmt.Errorf("%s voice has no trigger", s.voice.Kind())
	}
	s.pending.Store(true)
	return nil
}

// Pipe writes float32 little-endian mono to w until ctx is done or the
// engine is closed. It runs as fast as w accepts data.
func (e *Engine) Pipe(ctx context.Context, w io.Writer) error {
	buf := make([]byte, 4*e.blockSize)
	for ctx.Err() == nil {
		n, err := e.Read(buf)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return fmt.Errorf("pipe: %w", err)
		}
	}
	return nil
}

// Close closes every voice. It first waits for Frames goroutines, so their
// contexts must be cancelled before. Calling it again does nothing.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.frames.Wait()
	e.closed = true

	var errs []error
	for _, s := range e.slots {
		if err := s.voice.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.registry.Clear()
	e.logger.Debug("engine: closed after %d blocks, %s", e.block, e.profiler.Report())
	return errors.Join(errs...)
}

// Package plugin provides the shared "process one block" capability of every
// voice kind and a base that removes the boilerplate around it.
package plugin

import (
	"fmt"

	"github.com/audiospace/atomspace/pkg/framework/param"
	"github.com/audiospace/atomspace/pkg/framework/process"
)

// Processor is implemented by every voice kind.
// ProcessAudio runs on the audio thread: no allocation, locks or I/O.
type Processor interface {
	Info() Info
	Parameters() *param.Registry
	Initialize(sampleRate float64, maxBlockSize int) error
	ProcessAudio(ctx *process.Context)
	Reset()
	Close() error
}

// BaseProcessor provides common functionality for voice processors
type BaseProcessor struct {
	info         Info
	params       *param.Registry
	sampleRate   float64
	maxBlockSize int

	// Optional callbacks for customization
	onInitialize func(sampleRate float64, maxBlockSize int) error
	onReset      func()
}

// NewBaseProcessor creates a base with an empty parameter layout
func NewBaseProcessor(info Info) *BaseProcessor {
	return &BaseProcessor{
		info:   info,
		params: param.NewRegistry(),
	}
}

// Info implements the Processor interface
func (b *BaseProcessor) Info() Info {
	return b.info
}

// Initialize implements the Processor interface
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%s: invalid sample rate %f", b.info.Name, sampleRate)
	}
	b.sampleRate = sampleRate
	b.maxBlockSize = maxBlockSize

	if b.onInitialize != nil {
		return b.onInitialize(sampleRate, maxBlockSize)
	}
	return nil
}

// Parameters implements the Processor interface
func (b *BaseProcessor) Parameters() *param.Registry {
	return b.params
}

// Reset implements the Processor interface
func (b *BaseProcessor) Reset() {
	if b.onReset != nil {
		b.onReset()
	}
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// MaxBlockSize returns the largest block the host will request
func (b *BaseProcessor) MaxBlockSize() int {
	return b.maxBlockSize
}

// OnInitialize sets a callback for initialization
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int) error) {
	b.onInitialize = fn
}

// OnReset sets a callback for when the processor should reset its state
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}

// SimpleProcessor wraps a bare process function, mostly for tests and tooling
type SimpleProcessor struct {
	*BaseProcessor
	processFunc func(ctx *process.Context)
}

// NewSimpleProcessor creates a processor with just a process function
func NewSimpleProcessor(info Info, processFunc func(ctx *process.Context)) *SimpleProcessor {
	return &SimpleProcessor{
		BaseProcessor: NewBaseProcessor(info),
		processFunc:   processFunc,
	}
}

// ProcessAudio implements the Processor interface
func (s *SimpleProcessor) ProcessAudio(ctx *process.Context) {
	if s.processFunc != nil {
		s.processFunc(ctx)
	}
}

// Close implements the Processor interface
func (s *SimpleProcessor) Close() error {
	return nil
}

// Package dsp builds in-place processing chains for the master bus.
package dsp

import "fmt"

// Processor processes a mono buffer in place.
type Processor interface {
	Process(buffer []float32)
	Reset()
}

// ProcessorFunc allows using a function as a Processor.
type ProcessorFunc func([]float32)

func (f ProcessorFunc) Process(buffer []float32) {
	f(buffer)
}

func (f ProcessorFunc) Reset() {}

// Chain runs its processors in insertion order.
type Chain struct {
	name       string
	processors []Processor
	names      []string
	bypass     bool
}

// NewChain creates an empty chain.
func NewChain(name string) *Chain {
	return &Chain{name: name}
}

// Add appends a processor.
func (c *Chain) Add(name string, processor Processor) *Chain {
	c.processors = append(c.processors, processor)
	c.names = append(c.names, name)
	return c
}

// AddFunc appends a processing function.
func (c *Chain) AddFunc(name string, process func([]float32)) *Chain {
	return c.Add(name, ProcessorFunc(process))
}

// Process runs buffer through every processor unless the chain is bypassed.
func (c *Chain) Process(buffer []float32) {
	if c.bypass {
		return
	}
	for _, p := range c.processors {
		p.Process(buffer)
	}
}

// Reset resets all processors in the chain.
func (c *Chain) Reset() {
	for _, p := range c.processors {
		p.Reset()
	}
}

// SetBypass sets the bypass state of the chain.
func (c *Chain) SetBypass(bypass bool) {
	c.bypass = bypass
}

// Bypassed reports whether the chain is bypassed
func (c *Chain) Bypassed() bool {
	return c.bypass
}

// IsEmpty returns true if the chain has no processors.
func (c *Chain) IsEmpty() bool {
	return len(c.processors) == 0
}

// Count returns the number of processors in the chain.
func (c *Chain) Count() int {
	return len(c.processors)
}

// String lists the chain as "name: a -> b"
func (c *Chain) String() string {
	s := c.name + ":"
	for i, n := range c.names {
		if i > 0 {
			s += " ->"
		}
		s += " " + n
	}
	if len(c.names) == 0 {
		s += " (empty)"
	}
	return s
}

// Builder assembles a chain, skipping nil processors.
type Builder struct {
	chain *Chain
	err   error
}

// NewBuilder starts a chain.
func NewBuilder(name string) *Builder {
	return &Builder{chain: NewChain(name)}
}

// WithProcessor appends processor. A nil processor is an error at Build.
func (b *Builder) WithProcessor(name string, processor Processor) *Builder {
	if b.err != nil {
		return b
	}
	if processor == nil {
		b.err = fmt.Errorf("%s: nil processor %q", b.chain.name, name)
		return b
	}
	b.chain.Add(name, processor)
	return b
}

// WithFunc appends a processing function.
func (b *Builder) WithFunc(name string, process func([]float32)) *Builder {
	if process == nil {
		return b.WithProcessor(name, nil)
	}
	return b.WithProcessor(name, ProcessorFunc(process))
}

// If appends processor only when cond holds.
func (b *Builder) If(cond bool, name string, processor Processor) *Builder {
	if !cond {
		return b
	}
	return b.WithProcessor(name, processor)
}

// Build returns the chain or the first error.
func (b *Builder) Build() (*Chain, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.chain, nil
}

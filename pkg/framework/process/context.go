// Package process provides the per-block invocation context handed to voices.
package process

import "github.com/audiospace/atomspace/pkg/dsp"

// Context carries one block of work for one voice with zero allocations.
// Inputs is the positional input list for the block; it may be shorter than
// the voice's layout, in which case the missing positions take defaults.
type Context struct {
	Output     []float32
	Inputs     []float64
	SampleRate float64

	// Block counts invocations since the context was created
	Block uint64

	// Pre-allocated storage that Output and Inputs are sliced from
	outputBuffer []float32
	inputBuffer  []float64
}

// NewContext creates a new process context with pre-allocated buffers
func NewContext(sampleRate float64, maxBlockSize, numInputs int) *Context {
	c := &Context{
		SampleRate:   sampleRate,
		outputBuffer: make([]float32, maxBlockSize),
		inputBuffer:  make([]float64, numInputs),
	}
	c.Output = c.outputBuffer
	c.Inputs = c.inputBuffer
	return c
}

// SetBlockSize sizes Output for the next block, capped at the allocated maximum
func (c *Context) SetBlockSize(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(c.outputBuffer) {
		n = len(c.outputBuffer)
	}
	c.Output = c.outputBuffer[:n]
}

// MaxBlockSize returns the allocated block capacity
func (c *Context) MaxBlockSize() int {
	return len(c.outputBuffer)
}

// SetInputCount limits how many positional inputs the voice sees
func (c *Context) SetInputCount(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(c.inputBuffer) {
		n = len(c.inputBuffer)
	}
	c.Inputs = c.inputBuffer[:n]
}

// InputBuffer returns the full input storage for the host to fill
func (c *Context) InputBuffer() []float64 {
	return c.inputBuffer
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	return len(c.Output)
}

// Input returns the positional input at index, and whether it was supplied
func (c *Context) Input(index int) (float64, bool) {
	if index < 0 || index >= len(c.Inputs) {
		return 0, false
	}
	return c.Inputs[index], true
}

// Clear zeros the output buffer
func (c *Context) Clear() {
	dsp.Clear(c.Output)
}

// Advance marks the end of a block
func (c *Context) Advance() {
	c.Block++
}

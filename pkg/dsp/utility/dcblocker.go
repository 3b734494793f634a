package utility

import "github.com/audiospace/atomspace/pkg/dsp"

// DCBlocker removes DC offset from a mono signal.
// y[n] = x[n] - x[n-1] + R * y[n-1]
type DCBlocker struct {
	x1          float32
	y1          float32
	coefficient float32
}

// NewDCBlocker creates a DC blocker. The cutoff is typically 5-20 Hz.
func NewDCBlocker(cutoffHz, sampleRate float64) *DCBlocker {
	r := float32(1.0 - (dsp.TwoPi * cutoffHz / sampleRate))

	// Clamp R to ensure stability
	if r < 0.9 {
		r = 0.9
	}
	if r > 0.9999 {
		r = 0.9999
	}

	return &DCBlocker{coefficient: r}
}

// Process removes DC offset from a single sample.
func (dc *DCBlocker) Process(input float32) float32 {
	output := input - dc.x1 + dc.coefficient*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

// ProcessBuffer removes DC offset from a buffer in-place.
func (dc *DCBlocker) ProcessBuffer(buffer []float32) {
	for i := range buffer {
		buffer[i] = dc.Process(buffer[i])
	}
}

// Reset clears the filter state.
func (dc *DCBlocker) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}

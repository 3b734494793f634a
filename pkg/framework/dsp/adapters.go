package dsp

import (
	"math"
	"sync/atomic"

	"github.com/audiospace/atomspace/pkg/dsp/gain"
	"github.com/audiospace/atomspace/pkg/dsp/utility"
)

// DCBlockerAdapter adapts a DC blocker to the Processor interface.
type DCBlockerAdapter struct {
	blocker *utility.DCBlocker
}

// NewDCBlockerAdapter creates a DC blocker at cutoffHz.
func NewDCBlockerAdapter(cutoffHz, sampleRate float64) *DCBlockerAdapter {
	return &DCBlockerAdapter{blocker: utility.NewDCBlocker(cutoffHz, sampleRate)}
}

func (a *DCBlockerAdapter) Process(buffer []float32) {
	a.blocker.ProcessBuffer(buffer)
}

func (a *DCBlockerAdapter) Reset() {
	a.blocker.Reset()
}

// GainAdapter applies a gain in dB that may be changed from any goroutine.
type GainAdapter struct {
	bits atomic.Uint32 // float32 linear gain
	db   atomic.Uint64 // float64 dB, as set
}

// NewGainAdapter creates a gain stage at db.
func NewGainAdapter(db float64) *GainAdapter {
	a := &GainAdapter{}
	a.SetDb(db)
	return a
}

// SetDb sets the gain. Non-finite values are ignored.
func (a *GainAdapter) SetDb(db float64) {
	if math.IsNaN(db) || math.IsInf(db, 0) {
		return
	}
	a.db.Store(math.Float64bits(db))
	a.bits.Store(math.Float32bits(float32(gain.DbToLinear(db))))
}

// Db returns the gain in dB
func (a *GainAdapter) Db() float64 {
	return math.Float64frombits(a.db.Load())
}

func (a *GainAdapter) Process(buffer []float32) {
	g := math.Float32frombits(a.bits.Load())
	if g == 1 {
		return
	}
	gain.ApplyBuffer(buffer, g)
}

func (a *GainAdapter) Reset() {}

// ClipAdapter hard clips at a threshold.
type ClipAdapter struct {
	threshold float32
}

// NewClipAdapter creates a clipper. Non-positive thresholds clip at full scale.
func NewClipAdapter(threshold float32) *ClipAdapter {
	if threshold <= 0 {
		threshold = 1
	}
	return &ClipAdapter{threshold: threshold}
}

func (a *ClipAdapter) Process(buffer []float32) {
	gain.HardClipBuffer(buffer, a.threshold)
}

func (a *ClipAdapter) Reset() {}

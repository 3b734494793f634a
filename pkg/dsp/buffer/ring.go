// Package buffer provides a single-producer single-consumer sample ring that
// decouples block rendering from a device callback.
package buffer

import (
	"errors"
	"math"
	"sync/atomic"
	"time"
)

const minRingSize = 1024

// ErrOverrun is returned when a write does not fit in the free space
var ErrOverrun = errors.New("buffer overrun: not enough space available")

// Ring is a lock-free circular buffer. One goroutine writes, one reads.
// It starts pre-filled with latency worth of silence so the reader never
// starts on an empty buffer.
type Ring struct {
	data       []float32
	readPos    atomic.Uint64
	writePos   atomic.Uint64
	size       uint64
	mask       uint64
	preroll    uint64
	sampleRate float64
	channels   int

	underruns atomic.Uint64
	overruns  atomic.Uint64
}

// Stats describes ring health for monitoring
type Stats struct {
	Underruns      uint64
	Overruns       uint64
	FillPercentage float32
	Latency        time.Duration
}

// NewRing creates a ring holding at least four times latency of interleaved audio.
// The silent preroll is latency long.
func NewRing(sampleRate float64, channels int, latency time.Duration) *Ring {
	if channels < 1 {
		channels = 1
	}
	frames := uint64(math.Round(latency.Seconds() * sampleRate))
	preroll := frames * uint64(channels)
	size := nextPowerOf2(max(preroll*4, minRingSize))

	r := &Ring{
		data:       make([]float32, size),
		size:       size,
		mask:       size - 1,
		preroll:    preroll,
		sampleRate: sampleRate,
		channels:   channels,
	}
	r.writePos.Store(preroll)
	return r
}

// Write appends samples. It fails without writing anything if they do not fit.
func (r *Ring) Write(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	writePos := r.writePos.Load()
	if r.free(r.readPos.Load(), writePos) < uint64(len(samples)) {
		r.overruns.Add(1)
		return ErrOverrun
	}

	for _, s := range samples {
		r.data[writePos&r.mask] = s
		writePos++
	}
	r.writePos.Store(writePos)
	return nil
}

// Read fills output and returns how many samples came from the ring.
// Anything the ring could not supply is zeroed and counted as an underrun.
func (r *Ring) Read(output []float32) int {
	if len(output) == 0 {
		return 0
	}

	readPos := r.readPos.Load()
	available := r.writePos.Load() - readPos
	n := uint64(len(output))
	if available < n {
		n = available
		r.underruns.Add(1)
	}

	for i := uint64(0); i < n; i++ {
		output[i] = r.data[readPos&r.mask]
		readPos++
	}
	r.readPos.Store(readPos)

	for i := n; i < uint64(len(output)); i++ {
		output[i] = 0
	}
	return int(n)
}

// Free returns how many samples can be written right now
func (r *Ring) Free() int {
	return int(r.free(r.readPos.Load(), r.writePos.Load()))
}

// Buffered returns how many samples are waiting to be read
func (r *Ring) Buffered() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// Stats returns current ring statistics
func (r *Ring) Stats() Stats {
	buffered := r.writePos.Load() - r.readPos.Load()
	frames := float64(buffered) / float64(r.channels)
	return Stats{
		Underruns:      r.underruns.Load(),
		Overruns:       r.overruns.Load(),
		FillPercentage: float32(buffered) / float32(r.size) * 100.0,
		Latency:        time.Duration(frames / r.sampleRate * float64(time.Second)),
	}
}

// Reset drops buffered audio and restores the silent preroll.
// Not safe to call while the reader or writer is active.
func (r *Ring) Reset() {
	for i := range r.data {
		r.data[i] = 0
	}
	r.readPos.Store(0)
	r.writePos.Store(r.preroll)
	r.underruns.Store(0)
	r.overruns.Store(0)
}

func (r *Ring) free(readPos, writePos uint64) uint64 {
	used := writePos - readPos
	if used >= r.size {
		return 0
	}
	return r.size - used
}

// nextPowerOf2 rounds up to the next power of 2
func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

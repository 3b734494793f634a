// Package playback plays an engine through the OS audio device.
//
// A Pump renders blocks on its own goroutine into a lock-free ring; the
// device callback only copies out of the ring, so a slow block shows up
// as an underrun instead of stalling the device.
package playback

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/audiospace/atomspace/pkg/dsp/buffer"
)

// Source renders mono blocks
type Source interface {
	SampleRate() float64
	BlockSize() int
	ProcessBlock() []float32
}

// Pump keeps a ring topped up from a Source
type Pump struct {
	src     Source
	ring    *buffer.Ring
	poll    time.Duration
	scratch []float32
}

// NewPump creates a pump holding latency of mono audio
func NewPump(src Source, latency time.Duration) *Pump {
	poll := time.Duration(float64(src.BlockSize()) / src.SampleRate() * float64(time.Second) / 2)
	if poll < time.Millisecond {
		poll = time.Millisecond
	}
	return &Pump{
		src:  src,
		ring: buffer.NewRing(src.SampleRate(), 1, latency),
		poll: poll,
	}
}

// Fill renders blocks until the ring has no room for another and returns
// how many blocks it rendered
func (p *Pump) Fill() int {
	blocks := 0
	for p.ring.Free() >= p.src.BlockSize() {
		if err := p.ring.Write(p.src.ProcessBlock()); err != nil {
			break
		}
		blocks++
	}
	return blocks
}

// Run fills the ring until ctx is done
func (p *Pump) Run(ctx context.Context) {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		p.Fill()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Read serves float32 little-endian mono samples from the ring. Missing
// samples are silence; it never blocks.
func (p *Pump) Read(b []byte) (int, error) {
	n := len(b) / 4
	if cap(p.scratch) < n {
		p.scratch = make([]float32, n)
	}
	samples := p.scratch[:n]
	p.ring.Read(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(s))
	}
	return n * 4, nil
}

// Stats reports ring health
func (p *Pump) Stats() buffer.Stats {
	return p.ring.Stats()
}

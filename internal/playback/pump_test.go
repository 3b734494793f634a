package playback

import (
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countSource renders blocks whose samples count up from 1
type countSource struct {
	block  []float32
	next   float32
	blocks int
}

func newCountSource(size int) *countSource {
	return &countSource{block: make([]float32, size), next: 1}
}

func (s *countSource) SampleRate() float64 { return 48000 }
func (s *countSource) BlockSize() int      { return len(s.block) }

func (s *countSource) ProcessBlock() []float32 {
	for i := range s.block {
		s.block[i] = s.next
		s.next++
	}
	s.blocks++
	return s.block
}

func decode(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func TestPumpFillStopsWhenFull(t *testing.T) {
	src := newCountSource(64)
	p := NewPump(src, 50*time.Millisecond)

	blocks := p.Fill()
	require.Positive(t, blocks)
	assert.Equal(t, blocks, src.blocks)
	assert.Less(t, p.ring.Free(), 64)
	assert.Zero(t, p.Fill(), "a full ring renders nothing")
}

func TestPumpReadsPrerollThenAudio(t *testing.T) {
	src := newCountSource(64)
	p := NewPump(src, 50*time.Millisecond)
	p.Fill()

	// 50 ms of silence at 48 kHz
	buf := make([]byte, 2400*4)
	n, err := p.Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	for i, s := range decode(buf) {
		require.Zero(t, s, "preroll sample %d", i)
	}

	buf = make([]byte, 100*4)
	_, err = p.Read(buf)
	require.NoError(t, err)
	for i, s := range decode(buf) {
		require.Equal(t, float32(i+1), s)
	}
	assert.Zero(t, p.Stats().Underruns)
}

func TestPumpUnderrunIsSilent(t *testing.T) {
	src := newCountSource(64)
	p := NewPump(src, 10*time.Millisecond)

	buf := make([]byte, 1000*4)
	n, err := p.Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	for _, s := range decode(buf) {
		require.Zero(t, s)
	}
	assert.Equal(t, uint64(1), p.Stats().Underruns)
}

func TestPumpRunStopsWithContext(t *testing.T) {
	src := newCountSource(64)
	p := NewPump(src, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Positive(t, src.blocks)
}

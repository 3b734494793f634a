package render

import (
	"bytes"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	wav "github.com/youpy/go-wav"
)

type rampSource struct {
	block []float32
	next  int
}

func (s *rampSource) BlockSize() int      { return len(s.block) }
func (s *rampSource) SampleRate() float64 { return 8000 }

func (s *rampSource) ProcessBlock() []float32 {
	for i := range s.block {
		s.block[i] = float32(s.next%4) * 0.25
		s.next++
	}
	return s.block
}

func readAll(t *testing.T, data []byte) (*wav.WavFormat, []wav.Sample) {
	t.Helper()
	r := wav.NewReader(bytes.NewReader(data))
	format, err := r.Format()
	require.NoError(t, err)

	var all []wav.Sample
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		all = append(all, samples...)
	}
	return format, all
}

func TestRenderMono(t *testing.T) {
	var buf bytes.Buffer
	src := &rampSource{block: make([]float32, 64)}

	require.NoError(t, Render(&buf, src, 1, 100*time.Millisecond))

	format, samples := readAll(t, buf.Bytes())
	assert.Equal(t, uint16(1), format.NumChannels)
	assert.Equal(t, uint32(8000), format.SampleRate)
	assert.Equal(t, uint16(16), format.BitsPerSample)
	require.Len(t, samples, 800)

	for i, s := range samples {
		want := int(float32(i%4) * 0.25 * math.MaxInt16)
		require.Equal(t, want, s.Values[0], "sample %d", i)
	}
}

func TestRenderStereoDuplicates(t *testing.T) {
	var buf bytes.Buffer
	src := &rampSource{block: make([]float32, 100)}

	require.NoError(t, Render(&buf, src, 2, 50*time.Millisecond))

	format, samples := readAll(t, buf.Bytes())
	assert.Equal(t, uint16(2), format.NumChannels)
	require.Len(t, samples, 400)
	for i, s := range samples {
		require.Equal(t, s.Values[0], s.Values[1], "frame %d", i)
	}
}

func TestWriterClipsAndTruncates(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 8000, 1, 3)

	require.NoError(t, w.Write([]float32{2, -2, 0, 0.5, 0.5}))
	assert.Zero(t, w.Remaining())
	require.NoError(t, w.Write([]float32{1}))

	_, samples := readAll(t, buf.Bytes())
	require.Len(t, samples, 3)
	assert.Equal(t, math.MaxInt16, samples[0].Values[0])
	assert.Equal(t, -math.MaxInt16, samples[1].Values[0])
	assert.Equal(t, 0, samples[2].Values[0])
}

func TestFrames(t *testing.T) {
	n, err := Frames(time.Second, 48000)
	require.NoError(t, err)
	assert.Equal(t, uint32(48000), n)

	_, err = Frames(24*time.Hour*365, 48000)
	assert.ErrorIs(t, err, ErrTooLong)
}

type emptySource struct{}

func (emptySource) BlockSize() int          { return 0 }
func (emptySource) SampleRate() float64     { return 8000 }
func (emptySource) ProcessBlock() []float32 { return nil }

func TestRenderEmptySource(t *testing.T) {
	assert.Error(t, Render(io.Discard, emptySource{}, 1, time.Second))
}

// Package render writes rendered audio to 16-bit PCM WAV.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	wav "github.com/youpy/go-wav"

	"github.com/audiospace/atomspace/pkg/dsp/gain"
)

const bitsPerSample = 16

// ErrTooLong is returned when the requested length does not fit a WAV header
var ErrTooLong = errors.New("render: length exceeds WAV limits")

// Source fills one block of mono samples
type Source interface {
	BlockSize() int
	SampleRate() float64
	ProcessBlock() []float32
}

// Writer streams mono float blocks into a WAV file of a known length.
// The header is written up front, so the total frame count must be known.
type Writer struct {
	w        *wav.Writer
	channels int
	frames   uint32
	written  uint32
	scratch  []wav.Sample
}

// NewWriter writes a WAV header for frames frames. Each mono sample is
// copied to every channel.
func NewWriter(w io.Writer, sampleRate float64, channels int, frames uint32) *Writer {
	if channels < 1 {
		channels = 1
	}
	if channels > 2 {
		channels = 2
	}
	return &Writer{
		w:        wav.NewWriter(w, frames, uint16(channels), uint32(sampleRate), bitsPerSample),
		channels: channels,
		frames:   frames,
	}
}

// Write appends mono samples. Samples past the declared length are dropped.
func (w *Writer) Write(samples []float32) error {
	remaining := w.frames - w.written
	if uint32(len(samples)) > remaining {
		samples = samples[:remaining]
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(w.scratch) < len(samples) {
		w.scratch = make([]wav.Sample, len(samples))
	}
	out := w.scratch[:len(samples)]
	for i, s := range samples {
		v := int(gain.ToPCM16(s))
		out[i] = wav.Sample{Values: [2]int{v, v}}
	}
	if err := w.w.WriteSamples(out); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	w.written += uint32(len(samples))
	return nil
}

// Remaining returns how many frames are still to be written
func (w *Writer) Remaining() uint32 {
	return w.frames - w.written
}

// Frames converts a duration to a whole number of frames
func Frames(d time.Duration, sampleRate float64) (uint32, error) {
	n := math.Round(d.Seconds() * sampleRate)
	if n < 0 || n > math.MaxUint32/4 {
		return 0, ErrTooLong
	}
	return uint32(n), nil
}

// Render pulls blocks from src until d of audio has been written to w
func Render(w io.Writer, src Source, channels int, d time.Duration) error {
	frames, err := Frames(d, src.SampleRate())
	if err != nil {
		return err
	}

	out := NewWriter(w, src.SampleRate(), channels, frames)
	for out.Remaining() > 0 {
		block := src.ProcessBlock()
		if len(block) == 0 {
			return errors.New("render: source returned an empty block")
		}
		if err := out.Write(block); err != nil {
			return err
		}
	}
	return nil
}

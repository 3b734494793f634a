package engine

import (
	"context"
	"time"

	"github.com/audiospace/atomspace/pkg/dsp/gain"
)

// FrameDuration is the length of one streamed PCM frame
const FrameDuration = 20 * time.Millisecond

// FrameSamples returns the interleaved int16 count of one frame
func (e *Engine) FrameSamples(channels int) int {
	return int(e.sampleRate*float64(FrameDuration)/float64(time.Second)) * channels
}

// FillFrame renders into an interleaved int16 frame, copying the mono bus
// to every channel
func (e *Engine) FillFrame(frame []int16, channels int) {
	if channels < 1 {
		channels = 1
	}
	for i := 0; i+channels <= len(frame); i += channels {
		if len(e.pending) == 0 {
			e.pending = e.ProcessBlock()
		}
		v := gain.ToPCM16(e.pending[0])
		e.pending = e.pending[1:]
		for c := 0; c < channels; c++ {
			frame[i+c] = v
		}
	}
}

// Frames renders FrameDuration frames in real time until ctx is done.
// Every frame is a fresh slice, so receivers may keep it. Close waits for
// the goroutine to stop.
func (e *Engine) Frames(ctx context.Context, channels int) <-chan []int16 {
	out := make(chan []int16, 4)
	size := e.FrameSamples(channels)

	e.frames.Add(1)
	go func() {
		defer e.frames.Done()
		defer close(out)

		ticker := time.NewTicker(FrameDuration)
		defer ticker.Stop()

		for {
			frame := make([]int16, size)
			e.FillFrame(frame, channels)

			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

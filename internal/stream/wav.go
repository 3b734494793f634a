package stream

import (
	"math"
	"net/http"

	wav "github.com/youpy/go-wav"

	"github.com/audiospace/atomspace/pkg/framework/debug"
)

const bitsPerSample = 16

// WAVHandler serves the live mix as a chunked 16-bit WAV stream. The
// header declares the largest length the format allows, which players
// treat as an endless stream.
type WAVHandler struct {
	broadcaster *Broadcaster
	format      Format
	logger      *debug.Logger
}

// NewWAVHandler creates an HTTP stream handler.
func NewWAVHandler(b *Broadcaster, format Format, logger *debug.Logger) *WAVHandler {
	if logger == nil {
		logger = debug.Default()
	}
	return &WAVHandler{broadcaster: b, format: format, logger: logger}
}

// streamFrames is the largest frame count whose data chunk fits the header
func (h *WAVHandler) streamFrames() uint32 {
	blockAlign := uint32(h.format.Channels) * bitsPerSample / 8
	return (math.MaxUint32 - 44) / blockAlign
}

func (h *WAVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	h.logger.Info("http: listener %s connected (total: %d)", listener.ID, h.broadcaster.ListenerCount())
	defer h.logger.Info("http: listener %s disconnected", listener.ID)

	out := wav.NewWriter(w, h.streamFrames(), uint16(h.format.Channels), uint32(h.format.SampleRate), bitsPerSample)
	flusher.Flush()

	var samples []wav.Sample
	for {
		select {
		case <-r.Context().Done():
			return
		case <-listener.Done():
			return
		case frame := <-listener.C:
			samples = toSamples(samples[:0], frame, h.format.Channels)
			if err := out.WriteSamples(samples); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// toSamples groups interleaved PCM into WAV frames
func toSamples(dst []wav.Sample, frame []int16, channels int) []wav.Sample {
	if channels < 1 {
		channels = 1
	}
	for i := 0; i+channels <= len(frame); i += channels {
		var s wav.Sample
		for c := 0; c < channels && c < 2; c++ {
			s.Values[c] = int(frame[i+c])
		}
		dst = append(dst, s)
	}
	return dst
}

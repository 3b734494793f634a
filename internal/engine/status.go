package engine

import (
	"math"
	"time"

	"github.com/audiospace/atomspace/pkg/framework/debug"
)

// Status is a snapshot of the engine published from the audio goroutine
type Status struct {
	Block        uint64        `json:"block"`
	Time         time.Duration `json:"time"`
	Tempo        float64       `json:"tempo"`
	BeatsPerBar  float64       `json:"beats_per_bar"`
	Policy       string        `json:"tempo_policy"`
	MasterGain   float64       `json:"master_gain_db"`
	ActiveVoices int           `json:"active_voices"`
	Peak         float64       `json:"peak"`
	RMS          float64       `json:"rms"`
	Clipped      int           `json:"clipped"`
	NonFinite    int           `json:"non_finite"`
	CPULoad      float64       `json:"cpu_load"`
	Voices       []VoiceStatus `json:"voices"`
}

// VoiceStatus is the per-voice part of a Status
type VoiceStatus struct {
	VoiceInfo
	Active bool    `json:"active"`
	Age    float64 `json:"age"`
	Radius float64 `json:"radius"`
	Output float64 `json:"output"` // last sample; the count for a space voice
}

// meter accumulates levels between status snapshots
type meter struct {
	peak       float64
	sumSquares float64
	samples    int
	clipped    int
	nonFinite  int
}

func (m *meter) add(r debug.AnalysisResult, n int) {
	if p := float64(r.Peak); p > m.peak {
		m.peak = p
	}
	rms := float64(r.RMS)
	m.sumSquares += rms * rms * float64(n)
	m.samples += n
	m.clipped += r.ClippedSamples
	m.nonFinite += r.NaNCount
}

func (m *meter) reset() {
	*m = meter{}
}

// publish stores a new snapshot and restarts the level meter
func (e *Engine) publish() {
	st := &Status{
		Block:        e.block,
		Time:         time.Duration(float64(e.block*uint64(e.blockSize)) * float64(time.Second) / e.sampleRate),
		Tempo:        e.registry.Tempo(),
		BeatsPerBar:  e.registry.BeatsPerBar(),
		Policy:       e.registry.Policy().String(),
		MasterGain:   e.gain.Db(),
		ActiveVoices: e.registry.ActiveCount(),
		Peak:         e.meter.peak,
		Clipped:      e.meter.clipped,
		NonFinite:    e.meter.nonFinite,
		CPULoad:      e.profiler.CPULoad(),
		Voices:       make([]VoiceStatus, len(e.slots)),
	}
	if e.meter.samples > 0 {
		st.RMS = math.Sqrt(e.meter.sumSquares / float64(e.meter.samples))
	}
	for i, s := range e.slots {
		d := s.voice.Data()
		var last float64
		if n := len(s.ctx.Output); n > 0 {
			last = float64(s.ctx.Output[n-1])
		}
		st.Voices[i] = VoiceStatus{
			VoiceInfo: VoiceInfo{
				Index: i,
				ID:    d.ID,
				Kind:  s.voice.Kind().String(),
				Name:  s.voice.Info().Name,
			},
			Active: d.Active(),
			Age:    d.Age,
			Radius: d.Radius,
			Output: last,
		}
	}

	if st.NonFinite > 0 {
		e.logger.Warn("engine: %d non-finite samples before block %d", st.NonFinite, st.Block)
	}
	e.meter.reset()
	e.status.Store(st)
}

// Status returns the latest snapshot. It is never nil after New.
func (e *Engine) Status() Status {
	return *e.status.Load()
}

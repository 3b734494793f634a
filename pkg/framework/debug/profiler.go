package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects timings of named sections outside the audio path,
// such as patch loading or an offline render.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	maxSamples   int
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	Name        string
	Count       uint64
	Total       time.Duration
	Min         time.Duration
	Max         time.Duration
	Last        time.Duration
	samples     []time.Duration
	sampleIndex int
}

// NewProfiler creates a profiler keeping the last maxSamples timings per section.
func NewProfiler(maxSamples int) *Profiler {
	if maxSamples < 1 {
		maxSamples = 1
	}
	p := &Profiler{
		measurements: make(map[string]*Measurement),
		maxSamples:   maxSamples,
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether profiling is enabled.
func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing a named section; call the returned func to stop.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}

	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Time measures the execution time of a function.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record stores one timing for a named section.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{
			Name:    name,
			Min:     elapsed,
			Max:     elapsed,
			samples: make([]time.Duration, 0, p.maxSamples),
		}
		p.measurements[name] = m
	}

	m.Count++
	m.Total += elapsed
	m.Last = elapsed
	if elapsed < m.Min {
		m.Min = elapsed
	}
	if elapsed > m.Max {
		m.Max = elapsed
	}

	if len(m.samples) < p.maxSamples {
		m.samples = append(m.samples, elapsed)
	} else {
		m.samples[m.sampleIndex] = elapsed
	}
	m.sampleIndex = (m.sampleIndex + 1) % p.maxSamples
}

// Measurement returns a copy of the measurement for a named section.
func (p *Profiler) Measurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return Measurement{}, false
	}
	c := *m
	c.samples = append([]time.Duration(nil), m.samples...)
	return c, true
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measurements = make(map[string]*Measurement)
}

// Report formats every measurement, sorted by name.
func (p *Profiler) Report() string {
	p.mu.RLock()
	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	p.mu.RUnlock()

	if len(names) == 0 {
		return "No measurements recorded"
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		m, ok := p.Measurement(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%s: count=%d total=%v avg=%v min=%v max=%v p95=%v\n",
			name, m.Count, m.Total, m.Average(), m.Min, m.Max, m.Percentile(95))
	}
	return sb.String()
}

// Average returns the mean time for this measurement.
func (m Measurement) Average() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// Percentile returns the p-th percentile (0..100) of the retained samples.
func (m Measurement) Percentile(p float64) time.Duration {
	if len(m.samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), m.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	index := int(float64(len(sorted)-1) * p / 100.0)
	return sorted[index]
}

// AudioProcessProfiler times audio blocks without locks or allocation
// and derives the CPU load as a share of the block's real-time duration.
type AudioProcessProfiler struct {
	sampleRate float64
	blockSize  int
	budget     time.Duration

	blocks  atomic.Uint64
	totalNs atomic.Int64
	maxNs   atomic.Int64
	lastNs  atomic.Int64
}

// BlockStats is a snapshot of an AudioProcessProfiler.
type BlockStats struct {
	Blocks  uint64
	Average time.Duration
	Max     time.Duration
	Last    time.Duration
	Budget  time.Duration
	CPULoad float64 // percent of Budget, from the average
}

// NewAudioProcessProfiler creates a profiler for blocks of blockSize at sampleRate.
func NewAudioProcessProfiler(sampleRate float64, blockSize int) *AudioProcessProfiler {
	a := &AudioProcessProfiler{sampleRate: sampleRate, blockSize: blockSize}
	if sampleRate > 0 && blockSize > 0 {
		a.budget = time.Duration(float64(blockSize) / sampleRate * float64(time.Second))
	}
	return a
}

// Record stores the processing time of one block.
func (a *AudioProcessProfiler) Record(elapsed time.Duration) {
	ns := int64(elapsed)
	a.blocks.Add(1)
	a.totalNs.Add(ns)
	a.lastNs.Store(ns)
	for {
		cur := a.maxNs.Load()
		if ns <= cur || a.maxNs.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// CPULoad returns the average block time as a percentage of the block duration.
func (a *AudioProcessProfiler) CPULoad() float64 {
	blocks := a.blocks.Load()
	if blocks == 0 || a.budget <= 0 {
		return 0
	}
	avg := float64(a.totalNs.Load()) / float64(blocks)
	return avg / float64(a.budget) * 100.0
}

// Stats returns a snapshot of the block timings.
func (a *AudioProcessProfiler) Stats() BlockStats {
	blocks := a.blocks.Load()
	s := BlockStats{
		Blocks:  blocks,
		Max:     time.Duration(a.maxNs.Load()),
		Last:    time.Duration(a.lastNs.Load()),
		Budget:  a.budget,
		CPULoad: a.CPULoad(),
	}
	if blocks > 0 {
		s.Average = time.Duration(a.totalNs.Load() / int64(blocks))
	}
	return s
}

// Reset clears the block timings.
func (a *AudioProcessProfiler) Reset() {
	a.blocks.Store(0)
	a.totalNs.Store(0)
	a.maxNs.Store(0)
	a.lastNs.Store(0)
}

// Report formats the block statistics.
func (a *AudioProcessProfiler) Report() string {
	s := a.Stats()
	return fmt.Sprintf("blocks=%d size=%d rate=%.0fHz avg=%v max=%v budget=%v load=%.2f%%",
		s.Blocks, a.blockSize, a.sampleRate, s.Average, s.Max, s.Budget, s.CPULoad)
}

// Package voice tracks live voices and the tempo they share.
package voice

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/dsp/tempo"
)

// TempoPolicy decides who may change the shared tempo
type TempoPolicy int

const (
	// TempoShared lets only the host set tempo. Voices read it.
	TempoShared TempoPolicy = iota
	// TempoLastWriter lets every voice write its own tempo input each block;
	// the last voice to run wins.
	TempoLastWriter
)

// String returns the policy name
func (p TempoPolicy) String() string {
	switch p {
	case TempoShared:
		return "shared"
	case TempoLastWriter:
		return "last-writer"
	default:
		return "unknown"
	}
}

// ParseTempoPolicy parses "shared" or "last-writer"
func ParseTempoPolicy(s string) (TempoPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shared":
		return TempoShared, nil
	case "last-writer", "lastwriter", "last_writer":
		return TempoLastWriter, nil
	default:
		return TempoShared, fmt.Errorf("unknown tempo policy %q", s)
	}
}

// Registry maps voice IDs to their records and owns the shared tempo.
// It is an explicit object with the lifetime of one host; there is no
// package-level instance.
type Registry struct {
	mu     sync.RWMutex
	voices map[int32]*Data
	nextID int32

	activeCount atomic.Int32
	tempo       atomic.Uint64 // float64 bits
	beatsPerBar atomic.Uint64 // float64 bits
	policy      TempoPolicy
}

// NewRegistry creates an empty registry at the default tempo
func NewRegistry(policy TempoPolicy) *Registry {
	r := &Registry{
		voices: make(map[int32]*Data),
		policy: policy,
	}
	r.tempo.Store(math.Float64bits(dsp.DefaultBPM))
	r.beatsPerBar.Store(math.Float64bits(dsp.DefaultBeatsPerBar))
	return r
}

// Policy returns the tempo policy
func (r *Registry) Policy() TempoPolicy {
	return r.policy
}

// Register assigns the next ID to d and returns it. IDs start at 1 and are
// never reused; 0 means unregistered. Registering an already registered
// record returns its existing ID.
func (r *Registry) Register(d *Data) int32 {
	if d == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID != 0 {
		if existing, ok := r.voices[d.ID]; ok && existing == d {
			return d.ID
		}
	}

	r.nextID++
	d.ID = r.nextID
	r.voices[d.ID] = d
	if d.Active() {
		r.activeCount.Add(1)
	}
	return d.ID
}

// Unregister removes a voice. Unknown IDs are ignored.
func (r *Registry) Unregister(id int32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.voices[id]
	if !ok {
		return
	}
	delete(r.voices, id)
	if d.Active() {
		r.activeCount.Add(-1)
	}
	d.ID = 0
}

// Get returns the voice with the given ID
func (r *Registry) Get(id int32) (*Data, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.voices[id]
	return d, ok
}

// Len returns the number of registered voices, active or not
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.voices)
}

// Active returns the active voices ordered by ID
func (r *Registry) Active() []*Data {
	return r.AppendActive(nil)
}

// AppendActive appends the active voices, ordered by ID, to dst
func (r *Registry) AppendActive(dst []*Data) []*Data {
	r.mu.RLock()
	start := len(dst)
	for _, d := range r.voices {
		if d.Active() {
			dst = append(dst, d)
		}
	}
	r.mu.RUnlock()

	added := dst[start:]
	sort.Slice(added, func(i, j int) bool { return added[i].ID < added[j].ID })
	return dst
}

// ActiveCount returns the number of active voices without locking
func (r *Registry) ActiveCount() int {
	return int(r.activeCount.Load())
}

// SetActive marks a voice active or inactive and reports whether it exists
func (r *Registry) SetActive(id int32, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.voices[id]
	if !ok {
		return false
	}
	if d.active.Swap(active) != active {
		if active {
			r.activeCount.Add(1)
		} else {
			r.activeCount.Add(-1)
		}
	}
	return true
}

// Toggle flips a voice between active and inactive and returns the new state
func (r *Registry) Toggle(id int32) (active bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.voices[id]
	if !ok {
		return false, false
	}
	active = !d.Active()
	d.active.Store(active)
	if active {
		r.activeCount.Add(1)
	} else {
		r.activeCount.Add(-1)
	}
	return active, true
}

// Clear unregisters every voice. IDs keep increasing afterwards.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, d := range r.voices {
		d.ID = 0
		delete(r.voices, id)
	}
	r.activeCount.Store(0)
}

// SetTempo sets the shared tempo; non-positive values give the default
func (r *Registry) SetTempo(bpm float64) {
	r.tempo.Store(math.Float64bits(tempo.SanitizeBPM(bpm)))
}

// WriteTempo is called by voices with their own tempo input every block.
// Only the last-writer policy lets it through.
func (r *Registry) WriteTempo(bpm float64) {
	if r.policy == TempoLastWriter {
		r.SetTempo(bpm)
	}
}

// Tempo returns the shared tempo in bpm
func (r *Registry) Tempo() float64 {
	return math.Float64frombits(r.tempo.Load())
}

// SetBeatsPerBar sets the shared meter
func (r *Registry) SetBeatsPerBar(beats float64) {
	r.beatsPerBar.Store(math.Float64bits(tempo.SanitizeBeatsPerBar(beats)))
}

// BeatsPerBar returns the shared meter
func (r *Registry) BeatsPerBar() float64 {
	return math.Float64frombits(r.beatsPerBar.Load())
}

// SamplesPerBeat returns the beat period at the shared tempo
func (r *Registry) SamplesPerBeat(sampleRate float64) float64 {
	return tempo.SamplesPerBeat(r.Tempo(), sampleRate)
}

// SamplesPerBar returns the bar period at the shared tempo and meter
func (r *Registry) SamplesPerBar(sampleRate float64) float64 {
	return tempo.SamplesPerBar(r.Tempo(), sampleRate, r.BeatsPerBar())
}

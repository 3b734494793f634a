package param

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Registry is the ordered input layout of one voice.
// Parameter IDs are positions: the value at inputs[i] belongs to the
// parameter at index i.
type Registry struct {
	params map[uint32]*Parameter
	order  []uint32
	mu     sync.RWMutex

	// Published copy of the ordered list for the audio thread
	list atomic.Pointer[[]*Parameter]
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	r := &Registry{
		params: make(map[uint32]*Parameter),
		order:  make([]uint32, 0),
	}
	empty := []*Parameter{}
	r.list.Store(&empty)
	return r
}

// Add registers parameters, skipping duplicate IDs
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID]; exists {
			continue
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	list := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		list[i] = r.params[id]
	}
	r.list.Store(&list)
	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// GetByIndex retrieves a parameter by index
func (r *Registry) GetByIndex(index int32) *Parameter {
	list := *r.list.Load()
	if index < 0 || index >= int32(len(list)) {
		return nil
	}
	return list[index]
}

// ByName finds a parameter by short name or full name, ignoring case
func (r *Registry) ByName(name string) *Parameter {
	for _, p := range *r.list.Load() {
		if strings.EqualFold(p.ShortName, name) || strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// Count returns the number of parameters
func (r *Registry) Count() int32 {
	return int32(len(*r.list.Load()))
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	list := *r.list.Load()
	result := make([]*Parameter, len(list))
	copy(result, list)
	return result
}

// Resolve turns a positional input list into sanitized values in dst.
// Positions beyond len(inputs) get their default. dst must hold Count values.
func (r *Registry) Resolve(inputs, dst []float64) {
	for i, p := range *r.list.Load() {
		if i >= len(dst) {
			return
		}
		if i < len(inputs) {
			dst[i] = p.Sanitize(inputs[i])
		} else {
			dst[i] = p.DefaultValue
		}
	}
}

// Snapshot copies every current plain value into dst in layout order
func (r *Registry) Snapshot(dst []float64) {
	for i, p := range *r.list.Load() {
		if i >= len(dst) {
			return
		}
		dst[i] = p.GetPlainValue()
	}
}

// Defaults fills dst with every default value in layout order
func (r *Registry) Defaults(dst []float64) {
	for i, p := range *r.list.Load() {
		if i >= len(dst) {
			return
		}
		dst[i] = p.DefaultValue
	}
}

// Load sanitizes values into the stored parameters, positionally
func (r *Registry) Load(values []float64) {
	for i, p := range *r.list.Load() {
		if i < len(values) {
			p.SetPlainValue(values[i])
		} else {
			p.Reset()
		}
	}
}

package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/audiospace/atomspace/pkg/dsp/utility"
)

// Parameter is one positional input of a voice
type Parameter struct {
	ID           uint32 // Position in the input layout
	Name         string
	ShortName    string // Key used in patch files and the control surface
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64 // Plain value
	StepCount    int32
	Flags        uint32

	// Atomic plain value for lock-free access in the audio thread
	value atomic.Uint64

	// Value formatting
	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate uint32 = 1 << 0
	IsReadOnly  uint32 = 1 << 1
	IsList      uint32 = 1 << 3
	IsHidden    uint32 = 1 << 4
	// SubstituteNonPositive replaces zero and negative values with the default
	SubstituteNonPositive uint32 = 1 << 8
)

// Sanitize maps any incoming value onto a usable one.
// NaN and infinities give the default, as do values <= 0 when the parameter
// substitutes non-positive input. The result is clamped to the range and, for
// stepped parameters, snapped to the nearest step.
func (p *Parameter) Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return p.DefaultValue
	}
	if p.Flags&SubstituteNonPositive != 0 && v <= 0 {
		return p.DefaultValue
	}
	if p.Max > p.Min {
		v = utility.ClampParameter(v, p.Min, p.Max)
	}
	if p.StepCount > 0 {
		v = utility.QuantizeParameter(v, p.Min, p.Max, int(p.StepCount))
	}
	return v
}

// GetPlainValue returns the current plain value
func (p *Parameter) GetPlainValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetPlainValue sanitizes and stores a plain value
func (p *Parameter) SetPlainValue(plain float64) {
	p.value.Store(math.Float64bits(p.Sanitize(plain)))
}

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return p.Normalize(p.GetPlainValue())
}

// SetValue sets the normalized value (0-1)
func (p *Parameter) SetValue(normalized float64) {
	if normalized < 0 {
		normalized = 0
	} else if normalized > 1 {
		normalized = 1
	}
	p.SetPlainValue(p.Denormalize(normalized))
}

// Reset restores the default value
func (p *Parameter) Reset() {
	p.value.Store(math.Float64bits(p.DefaultValue))
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns the formatted plain value
func (p *Parameter) FormatValue(plain float64) string {
	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	// Default formatting
	if p.StepCount > 0 {
		return fmt.Sprintf("%.0f", plain)
	}
	return fmt.Sprintf("%.2f", plain)
}

// String formats the current value with its name
func (p *Parameter) String() string {
	return fmt.Sprintf("%s=%s", p.ShortName, p.FormatValue(p.GetPlainValue()))
}

// ParseValue parses a string to a sanitized plain value
func (p *Parameter) ParseValue(str string) (float64, error) {
	if p.parseFunc != nil {
		plain, err := p.parseFunc(str)
		if err != nil {
			return 0, err
		}
		return p.Sanitize(plain), nil
	}
	plain, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	return p.Sanitize(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	return utility.ClampParameter(utility.UnscaleParameter(plain, p.Min, p.Max), 0, 1)
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return utility.ScaleParameter(normalized, p.Min, p.Max)
}

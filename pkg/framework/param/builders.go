package param

import (
	"fmt"
	"strings"
)

// ChoiceOption represents a single choice in a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Choice creates a parameter builder for a multiple choice parameter
func Choice(id uint32, name string, options []ChoiceOption) *Builder {
	formatter := func(value float64) string {
		for _, opt := range options {
			if opt.Value == value {
				return opt.Name
			}
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for _, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(str, alias) {
					return opt.Value, nil
				}
			}
		}
		return 0, fmt.Errorf("unknown option: %s", str)
	}

	minVal, maxVal := 0.0, 0.0
	if len(options) > 0 {
		minVal = options[0].Value
		maxVal = options[len(options)-1].Value
	}

	b := New(id, name).
		Range(minVal, maxVal).
		Steps(int32(len(options) - 1)).
		Formatter(formatter, parser)
	b.param.Flags |= IsList
	if len(options) > 0 {
		b.Default(options[0].Value)
	}
	return b
}

// Common parameter helpers

// PositionParameter creates a coordinate or velocity component
func PositionParameter(id uint32, name string) *Builder {
	return New(id, name).
		Range(-1e6, 1e6).
		Default(0)
}

// RadiusParameter creates a collision radius
func RadiusParameter(id uint32, defaultVal float64) *Builder {
	return New(id, "Radius").
		ShortName("radius").
		Range(0.001, 1000).
		Default(defaultVal).
		Positive()
}

// FrequencyParameter creates a frequency parameter in Hz
func FrequencyParameter(id uint32, name string, min, max, defaultVal float64) *Builder {
	return New(id, name).
		Range(min, max).
		Default(defaultVal).
		Unit("Hz").
		Positive().
		Formatter(FrequencyFormatter, FrequencyParser)
}

// AmplitudeParameter creates a linear output level
func AmplitudeParameter(id uint32, defaultVal float64) *Builder {
	return New(id, "Amplitude").
		ShortName("amp").
		Range(0, 1).
		Default(defaultVal).
		Formatter(PercentFormatter, PercentParser)
}

// BPMParameter creates a tempo parameter
func BPMParameter(id uint32, defaultVal float64) *Builder {
	return New(id, "Tempo").
		ShortName("bpm").
		Range(20, 400).
		Default(defaultVal).
		Unit("bpm").
		Positive().
		Formatter(BPMFormatter, BPMParser)
}

// BeatsPerBarParameter creates a meter parameter
func BeatsPerBarParameter(id uint32, defaultVal float64) *Builder {
	return New(id, "Beats Per Bar").
		ShortName("beats_per_bar").
		Range(1, 16).
		Steps(15).
		Default(defaultVal).
		Positive()
}

// TimeParameter creates a time parameter in seconds
func TimeParameter(id uint32, name string, min, max, defaultVal float64) *Builder {
	return New(id, name).
		Range(min, max).
		Default(defaultVal).
		Unit("s").
		Positive().
		Formatter(TimeFormatter, TimeParser)
}

// AmountParameter creates a 0..max depth/amount parameter
func AmountParameter(id uint32, name string, max, defaultVal float64) *Builder {
	return New(id, name).
		Range(0, max).
		Default(defaultVal).
		Formatter(PercentFormatter, PercentParser)
}

// RatioParameter creates a compression ratio parameter
func RatioParameter(id uint32, name string, minRatio, maxRatio, defaultRatio float64) *Builder {
	return New(id, name).
		Range(minRatio, maxRatio).
		Default(defaultRatio).
		Positive().
		Formatter(RatioFormatter, RatioParser)
}

// LevelParameter creates a linear level such as a threshold
func LevelParameter(id uint32, name string, defaultVal float64) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(defaultVal)
}

// TriggerParameter creates a gate input that fires on a rising edge
func TriggerParameter(id uint32, name string) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(0).
		Formatter(OnOffFormatter, OnOffParser)
}

// Package utility provides common DSP utility functions and processors.
package utility

import "math"

// ScaleParameter performs linear scaling of a normalized parameter value (0-1) to a target range.
func ScaleParameter(normalized, min, max float64) float64 {
	return min + normalized*(max-min)
}

// UnscaleParameter performs inverse linear scaling from a target range back to normalized (0-1).
func UnscaleParameter(value, min, max float64) float64 {
	if max == min {
		return 0.0
	}
	return (value - min) / (max - min)
}

// ClampParameter ensures a parameter value stays within the specified range.
func ClampParameter(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// QuantizeParameter rounds a plain value to the nearest of steps+1 evenly
// spaced points across [min, max].
func QuantizeParameter(value, min, max float64, steps int) float64 {
	if steps <= 0 || max <= min {
		return value
	}
	stepSize := (max - min) / float64(steps)
	return min + math.Round((value-min)/stepSize)*stepSize
}

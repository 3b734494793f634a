package debug

import (
	"fmt"
	"math"
)

// AudioAnalyzer measures level and sanity of rendered blocks.
// Analyze does not allocate and may be called once per block by a host.
type AudioAnalyzer struct {
	clippingThreshold float32
	dcThreshold       float32
	silenceThreshold  float32
}

// NewAudioAnalyzer creates a new audio analyzer with default thresholds.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		clippingThreshold: 0.99,
		dcThreshold:       0.01,
		silenceThreshold:  0.0001,
	}
}

// SetClippingThreshold sets the absolute level counted as clipping.
func (a *AudioAnalyzer) SetClippingThreshold(threshold float32) {
	a.clippingThreshold = threshold
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int
	ZeroCrossings  int
}

// Analyze computes peak, RMS, DC offset and problem counts for a buffer.
// NaN and infinite samples are counted and excluded from the level figures.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	result := AnalysisResult{}

	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares float64
	var lastSample float32
	counted := 0

	for _, sample := range buffer {
		s := float64(sample)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			result.HasNaN = true
			result.NaNCount++
			continue
		}

		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs > result.Peak {
			result.Peak = abs
		}
		if abs >= a.clippingThreshold {
			result.Clipping = true
			result.ClippedSamples++
		}

		sum += s
		sumSquares += s * s

		if counted > 0 && (lastSample < 0) != (sample < 0) {
			result.ZeroCrossings++
		}
		lastSample = sample
		counted++
	}

	if counted > 0 {
		result.RMS = float32(math.Sqrt(sumSquares / float64(counted)))
		result.DC = float32(sum / float64(counted))
	}
	result.Silent = result.RMS < a.silenceThreshold

	return result
}

// Issues lists human-readable problems found in an analysis result.
func (a *AudioAnalyzer) Issues(result AnalysisResult, name string) []string {
	var issues []string

	if result.HasNaN {
		issues = append(issues, fmt.Sprintf("%s: contains %d non-finite values", name, result.NaNCount))
	}
	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, result.ClippedSamples))
	}
	if math.Abs(float64(result.DC)) > float64(a.dcThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}
	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: peak exceeds 1.0 (%.3f)", name, result.Peak))
	}

	return issues
}

// CheckBuffer analyzes a buffer with default thresholds and returns its problems.
func CheckBuffer(buffer []float32, name string) []string {
	analyzer := NewAudioAnalyzer()
	return analyzer.Issues(analyzer.Analyze(buffer), name)
}

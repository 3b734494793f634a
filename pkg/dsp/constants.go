// Package dsp provides digital signal processing utilities and algorithms.
package dsp

// Common audio constants used throughout the DSP packages and atoms.
const (
	// Phase constants
	TwoPi  = 6.283185307179586
	Pi     = 3.141592653589793
	HalfPi = 1.5707963267948966

	// Tempo
	DefaultBPM         = 120.0
	DefaultBeatsPerBar = 4.0
	SecondsPerMinute   = 60.0

	// Envelope values below SnapFloor are forced to exactly zero
	SnapFloor = 1e-4

	// Added to the compressor gain denominator to avoid division by zero
	GainEpsilon = 1e-4

	// Frequency sweep
	SweepStartMultiple = 3.0
	SweepGlide         = 0.9995

	// Peak shaping
	PeakRegion      = 0.7
	SecondHarmonic  = 0.3
	ThirdHarmonic   = 0.15
	SoftClipKneeMix = 0.5

	// Common sample rates
	SampleRate44k1 = 44100.0
	SampleRate48k  = 48000.0
	SampleRate96k  = 96000.0

	// Buffer sizes
	MinBufferSize     = 32
	DefaultBufferSize = 64
	MaxBufferSize     = 8192

	// Gain
	UnityGain = 1.0
	MinDB     = -200.0
)

// Default voice settings shared by the atoms.
const (
	DefaultToneFreq     = 440.0
	DefaultKickFreq     = 60.0
	DefaultBassFreq     = 110.0
	DefaultKickDecay    = 0.15 // 150ms
	DefaultModDepth     = 0.1
	DefaultDistortion   = 0.3
	DefaultAttack       = 0.01 // 10ms
	DefaultRelease      = 0.1  // 100ms
	DefaultSidechain    = 0.8
	DefaultThreshold    = 0.05
	DefaultRatio        = 10.0
	DefaultSpaceSize    = 10.0
	KickOutputScale     = 0.5
	BassOutputScale     = 0.7
	WompModCyclesOnBeat = 2.0
)

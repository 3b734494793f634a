package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/audiospace/atomspace/pkg/dsp"
	"github.com/audiospace/atomspace/pkg/framework/debug"
	"github.com/audiospace/atomspace/pkg/framework/voice"
)

// Mode selects where the host sends its audio
type Mode string

const (
	ModeRender Mode = "render" // offline WAV file
	ModePlay   Mode = "play"   // OS audio device with keyboard control
	ModeStream Mode = "stream" // WebRTC/HTTP listeners
	ModePipe   Mode = "pipe"   // raw float32 mono on stdout
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRender, ModePlay, ModeStream, ModePipe:
		return m, nil
	case "":
		return ModeRender, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Engine
	SampleRate  float64
	BlockSize   int
	BPM         float64 // used when the patch does not set one
	TempoPolicy voice.TempoPolicy
	DCBlock     bool
	GainDB      float64       // master gain
	Clip        bool          // hard clip the master bus at full scale
	Latency     time.Duration // playback buffer

	// Host
	Mode      Mode
	Output    string        // WAV path in render mode
	Duration  time.Duration // render length
	Addr      string        // listen address in stream mode
	PatchPath string        // Lua patch; empty means the default patch

	// Logging
	LogLevel debug.LogLevel
	LogFile  string
}

// Load reads configuration from environment variables with sane defaults.
// Numeric values that do not parse fall back to their default; enumerated
// values that do not parse are an error.
func Load() (Config, error) {
	cfg := Config{
		SampleRate: envFloat("ATOM_SAMPLE_RATE", dsp.SampleRate48k),
		BlockSize:  envInt("ATOM_BLOCK_SIZE", dsp.DefaultBufferSize),
		BPM:        envFloat("ATOM_BPM", dsp.DefaultBPM),
		DCBlock:    envBool("ATOM_DC_BLOCK", true),
		GainDB:     envFloat("ATOM_GAIN_DB", 0),
		Clip:       envBool("ATOM_CLIP", false),
		Latency:    envDuration("ATOM_LATENCY", 50*time.Millisecond),

		Output:    envStr("ATOM_OUTPUT", "out.wav"),
		Duration:  envDuration("ATOM_DURATION", 8*time.Second),
		Addr:      envStr("ATOM_ADDR", ":8080"),
		PatchPath: envStr("ATOM_PATCH", ""),
		LogFile:   envStr("ATOM_LOG_FILE", ""),
	}

	var err error
	if cfg.TempoPolicy, err = voice.ParseTempoPolicy(os.Getenv("ATOM_TEMPO_POLICY")); err != nil {
		return cfg, fmt.Errorf("ATOM_TEMPO_POLICY: %w", err)
	}
	if cfg.Mode, err = ParseMode(os.Getenv("ATOM_MODE")); err != nil {
		return cfg, fmt.Errorf("ATOM_MODE: %w", err)
	}
	if cfg.LogLevel, err = debug.ParseLevel(os.Getenv("ATOM_LOG_LEVEL")); err != nil {
		return cfg, fmt.Errorf("ATOM_LOG_LEVEL: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges the engine cannot substitute for
func (c Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 384000 {
		return fmt.Errorf("sample rate %v out of range [8000, 384000]", c.SampleRate)
	}
	if c.BlockSize < 1 || c.BlockSize > dsp.MaxBufferSize {
		return fmt.Errorf("block size %d out of range [1, %d]", c.BlockSize, dsp.MaxBufferSize)
	}
	if c.Mode == ModeRender && c.Duration <= 0 {
		return fmt.Errorf("render duration must be positive, got %v", c.Duration)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("8s", "250ms") or plain seconds ("8")
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	return fallback
}

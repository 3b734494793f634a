package dsp

import (
	"math"
	"testing"
)

// scaler multiplies by a value and counts resets.
type scaler struct {
	factor float32
	resets int
}

func (s *scaler) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] *= s.factor
	}
}

func (s *scaler) Reset() {
	s.resets++
}

func TestChain(t *testing.T) {
	t.Run("Order", func(t *testing.T) {
		chain := NewChain("test")
		chain.Add("double", &scaler{factor: 2}).
			AddFunc("offset", func(b []float32) {
				for i := range b {
					b[i] += 1
				}
			})

		buffer := []float32{1, 2, 3}
		chain.Process(buffer)

		// (x*2)+1, not (x+1)*2
		expected := []float32{3, 5, 7}
		for i, v := range buffer {
			if v != expected[i] {
				t.Errorf("sample %d: expected %f, got %f", i, expected[i], v)
			}
		}
		if chain.Count() != 2 {
			t.Errorf("expected 2 processors, got %d", chain.Count())
		}
		if got := chain.String(); got != "test: double -> offset" {
			t.Errorf("unexpected String %q", got)
		}
	})

	t.Run("Bypass", func(t *testing.T) {
		chain := NewChain("bypass").Add("double", &scaler{factor: 2})
		chain.SetBypass(true)

		buffer := []float32{1, 2}
		chain.Process(buffer)
		if buffer[0] != 1 || buffer[1] != 2 {
			t.Errorf("bypassed chain changed the buffer: %v", buffer)
		}
		if !chain.Bypassed() {
			t.Error("expected chain to report bypass")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		s := &scaler{factor: 1}
		chain := NewChain("reset").Add("a", s).AddFunc("b", func([]float32) {})
		chain.Reset()
		if s.resets != 1 {
			t.Errorf("expected 1 reset, got %d", s.resets)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		chain := NewChain("empty")
		if !chain.IsEmpty() {
			t.Error("new chain should be empty")
		}
		if got := chain.String(); got != "empty: (empty)" {
			t.Errorf("unexpected String %q", got)
		}
		chain.Process([]float32{1})
	})
}

func TestBuilder(t *testing.T) {
	t.Run("Conditional", func(t *testing.T) {
		chain, err := NewBuilder("master").
			If(false, "dc", NewDCBlockerAdapter(10, 48000)).
			WithProcessor("gain", NewGainAdapter(0)).
			If(true, "clip", NewClipAdapter(1)).
			Build()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := chain.String(); got != "master: gain -> clip" {
			t.Errorf("unexpected chain %q", got)
		}
	})

	t.Run("NilProcessor", func(t *testing.T) {
		_, err := NewBuilder("bad").
			WithProcessor("gain", NewGainAdapter(0)).
			WithFunc("missing", nil).
			WithProcessor("clip", NewClipAdapter(1)).
			Build()
		if err == nil {
			t.Error("expected error for nil processor")
		}
	})
}

func TestGainAdapter(t *testing.T) {
	tests := []struct {
		name string
		db   float64
		want float32
	}{
		{"Unity", 0, 0.5},
		{"Minus6", -6.0206, 0.25},
		{"Plus6", 6.0206, 1.0},
		{"Silence", -200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewGainAdapter(tt.db)
			buffer := []float32{0.5}
			a.Process(buffer)
			if math.Abs(float64(buffer[0]-tt.want)) > 0.001 {
				t.Errorf("expected %f, got %f", tt.want, buffer[0])
			}
		})
	}

	t.Run("IgnoresNonFinite", func(t *testing.T) {
		a := NewGainAdapter(-3)
		a.SetDb(math.NaN())
		a.SetDb(math.Inf(1))
		if a.Db() != -3 {
			t.Errorf("expected -3 dB, got %f", a.Db())
		}
	})
}

func TestClipAdapter(t *testing.T) {
	buffer := []float32{2, -2, 0.5}
	NewClipAdapter(0).Process(buffer)

	expected := []float32{1, -1, 0.5}
	for i, v := range buffer {
		if v != expected[i] {
			t.Errorf("sample %d: expected %f, got %f", i, expected[i], v)
		}
	}
}

func TestDCBlockerAdapter(t *testing.T) {
	a := NewDCBlockerAdapter(10, 48000)
	buffer := make([]float32, 48000)
	for i := range buffer {
		buffer[i] = 0.5
	}
	a.Process(buffer)

	if v := buffer[len(buffer)-1]; math.Abs(float64(v)) > 0.01 {
		t.Errorf("offset not removed: %f", v)
	}

	a.Reset()
	first := []float32{0.5}
	a.Process(first)
	if first[0] != 0.5 {
		t.Errorf("expected reset blocker to pass the first sample, got %f", first[0])
	}
}

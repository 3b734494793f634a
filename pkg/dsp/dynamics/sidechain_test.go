package dynamics

import (
	"math"
	"testing"

	"github.com/audiospace/atomspace/pkg/dsp/envelope"
)

func TestUpdateFollower(t *testing.T) {
	tests := []struct {
		name     string
		control  float64
		follower float64
		want     float64
	}{
		// attack 0.5, release 0.9
		{"rising uses attack", 1.0, 0.0, 0.5},
		{"falling uses release", 0.0, 1.0, 0.9},
		{"equal uses release", 0.5, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateFollower(tt.control, tt.follower, 0.5, 0.9)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("UpdateFollower(%f, %f) = %f, want %f", tt.control, tt.follower, got, tt.want)
			}
		})
	}
}

func TestNormalizeRatio(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{10, 10},
		{4, 4},
		{0.1, 10},
		{0.25, 4},
		{1, 1},
		{0, 10},
		{-3, 10},
		{math.NaN(), 10},
	}

	for _, tt := range tests {
		if got := NormalizeRatio(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeRatio(%v) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestComputeGainBelowThreshold(t *testing.T) {
	for _, f := range []float64{0, 0.01, 0.05} {
		if got := ComputeGain(f, 0.05, 10, 1); got != 1.0 {
			t.Errorf("ComputeGain(%f) = %f, want exactly 1", f, got)
		}
	}
}

func TestComputeGainAboveThreshold(t *testing.T) {
	got := ComputeGain(1.0, 0.05, 0.1, 1.0)
	if got >= 1 || got <= 0 {
		t.Fatalf("ComputeGain(1.0, 0.05, 0.1, 1) = %f, want in (0, 1)", got)
	}

	// threshold + (1 - threshold)/10 over 1 + ε
	want := (0.05 + 0.95/10) / (1.0 + 1e-4)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("gain = %f, want %f", got, want)
	}

	if other := ComputeGain(1.0, 0.05, 10, 1.0); math.Abs(other-got) > 1e-12 {
		t.Errorf("ratio 10 gain %f differs from ratio 0.1 gain %f", other, got)
	}
}

func TestComputeGainZeroAmount(t *testing.T) {
	cases := []struct {
		follower, threshold, ratio float64
	}{
		{1, 0.05, 10},
		{100, 0, 0.1},
		{0.5, 0.4, 2},
	}
	for _, c := range cases {
		if got := ComputeGain(c.follower, c.threshold, c.ratio, 0); got != 1.0 {
			t.Errorf("ComputeGain(%v, amount 0) = %f, want 1", c, got)
		}
	}
}

func TestComputeGainBlend(t *testing.T) {
	full := ComputeGain(1.0, 0.05, 10, 1.0)
	half := ComputeGain(1.0, 0.05, 10, 0.5)
	want := 1 - (1-full)*0.5
	if math.Abs(half-want) > 1e-12 {
		t.Errorf("half amount gain = %f, want %f", half, want)
	}
}

func TestSidechainDucksWhileControlIsHigh(t *testing.T) {
	sr := 48000.0
	s := NewSidechain(sr)
	s.SetTimes(0.01, 0.1)
	s.SetThreshold(0.05)
	s.SetRatio(10)
	s.SetAmount(0.8)

	env := envelope.NewDecay(sr)
	env.SetDecay(0.15)
	env.Trigger()

	minGain := 1.0
	for i := 0; i < int(0.11*sr); i++ {
		g := s.Follow(env.Value())
		env.Next()
		if g > 1 || g <= 0 {
			t.Fatalf("sample %d: gain %f outside (0, 1]", i, g)
		}
		if i > 200 && g >= 1 {
			t.Fatalf("sample %d: expected ducking while the envelope is high", i)
		}
		if g < minGain {
			minGain = g
		}
	}

	if minGain > 0.5 {
		t.Errorf("minimum gain = %f, expected substantial ducking", minGain)
	}
	if s.GainReductionDB() >= 0 {
		t.Errorf("GainReductionDB = %f, want negative while ducking", s.GainReductionDB())
	}
}

func TestSidechainRecovers(t *testing.T) {
	s := NewSidechain(48000)
	for i := 0; i < 4800; i++ {
		s.Follow(1.0)
	}
	if s.Gain() >= 1 {
		t.Fatal("expected reduction with a constant loud control")
	}

	for i := 0; i < 48000; i++ {
		s.Follow(0)
	}
	if s.Gain() != 1 {
		t.Errorf("gain after a second of silence = %f, want 1", s.Gain())
	}
	if s.Follower() > 0.05 {
		t.Errorf("follower = %f, want below threshold", s.Follower())
	}
}

func TestSidechainProcessAndReset(t *testing.T) {
	s := NewSidechain(48000)
	s.SetAmount(1)
	for i := 0; i < 2000; i++ {
		s.Follow(1.0)
	}

	g := s.Gain()
	out := s.Process(0.5, 1.0)
	if out >= 0.5 {
		t.Errorf("Process = %f, want ducked below 0.5 (gain was %f)", out, g)
	}

	s.Reset()
	if s.Gain() != 1 || s.Follower() != 0 {
		t.Errorf("Reset left gain %f follower %f", s.Gain(), s.Follower())
	}
	if s.Process(0.5, 0) != 0.5 {
		t.Error("silent control should pass the sample through")
	}
}

func TestSidechainAmountClamp(t *testing.T) {
	s := NewSidechain(48000)
	s.SetAmount(5)
	for i := 0; i < 5000; i++ {
		s.Follow(1)
	}
	if s.Gain() <= 0 || s.Gain() > 1 {
		t.Errorf("gain %f outside (0, 1] with amount above 1", s.Gain())
	}

	s.SetRatio(-1)
	if s.Ratio() != 10 {
		t.Errorf("Ratio after invalid value = %f, want 10", s.Ratio())
	}
}

package distortion

import (
	"math"
	"testing"
)

func TestSoftClip(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"inside", 0.5, 0.5},
		{"negative inside", -0.9, -0.9},
		{"unity", 1, 1},
		{"just past one", 1.1, 1 - (1-1/1.1)*0.5},
		{"far past one", 100, 1 - (1-0.01)*0.5},
		{"just past minus one", -1.1, -1 + (1-1/1.1)*0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SoftClip(tt.in)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("SoftClip(%f) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}
}

func TestSoftClipPullsInside(t *testing.T) {
	for _, x := range []float64{1.0001, 1.5, 3, 1e6} {
		if got := SoftClip(x); got <= -1 || got >= 1 {
			t.Errorf("SoftClip(%f) = %f, want strictly inside (-1, 1)", x, got)
		}
		if got := SoftClip(-x); got <= -1 || got >= 1 {
			t.Errorf("SoftClip(%f) = %f, want strictly inside (-1, 1)", -x, got)
		}
	}
}

func TestPeakFactor(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.7, 0},
		{-0.7, 0},
		{0.85, 0.5},
		{-0.85, 0.5},
		{1, 1},
	}

	for _, tt := range tests {
		if got := PeakFactor(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("PeakFactor(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestShapeOutsidePeakIsUntouched(t *testing.T) {
	p := NewPeakShaper(0.3)
	for _, mod := range []float64{0, 0.3, -0.5, 0.7} {
		got := p.Shape(0.42, 1.0, mod, 130, 110)
		if got != 0.42 {
			t.Errorf("mod %f: Shape = %f, want sample unchanged", mod, got)
		}
	}
}

func TestShapeAddsHarmonics(t *testing.T) {
	p := NewPeakShaper(0.3)
	phase := 0.4
	sample := math.Sin(phase)
	// m = 1: peak factor 1, f = 110*(1+0.1) so deviation 0.1
	got := p.Shape(sample, phase, 1.0, 121, 110)

	d := 1.0 * (11.0 / 110.0) * 0.3
	want := sample + d*math.Sin(2*phase)*0.3 + d*math.Sin(3*phase)*0.15
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Shape = %f, want %f", got, want)
	}
}

func TestShapeNoDeviationNoDistortion(t *testing.T) {
	p := NewPeakShaper(1.0)
	got := p.Shape(0.9, 1.1, 0.95, 110, 110)
	if got != 0.9 {
		t.Errorf("Shape with f == f0 = %f, want 0.9", got)
	}
}

func TestShapeCarrierSource(t *testing.T) {
	p := NewPeakShaper(0.5)
	p.SetSource(PeakFromCarrier)

	// Modulator in the peak region but carrier is not: no shaping
	if got := p.Shape(0.2, 0.2, 1.0, 121, 110); got != 0.2 {
		t.Errorf("carrier source with quiet carrier: got %f, want 0.2", got)
	}

	// Carrier in the peak region with the modulator near zero
	phase := math.Pi / 2 * 0.9
	sample := math.Sin(phase)
	got := p.Shape(sample, phase, 0.05, 121, 110)
	if got == sample {
		t.Error("carrier source with loud carrier should shape the sample")
	}

	if PeakFromCarrier.String() != "carrier" || PeakFromModulator.String() != "modulator" {
		t.Error("unexpected PeakSource names")
	}
}

func TestShapeBounded(t *testing.T) {
	p := NewPeakShaper(50)
	for i := 0; i < 1000; i++ {
		phase := float64(i) * 0.0123
		got := p.Shape(math.Sin(phase), phase, 1.0, 400, 110)
		if math.Abs(got) > 1 {
			t.Fatalf("phase %f: Shape = %f beyond unit range", phase, got)
		}
	}
}

package gain

import (
	"math"
	"testing"
)

func TestDbConversion(t *testing.T) {
	tests := []struct {
		name   string
		linear float64
		db     float64
	}{
		{"unity", 1.0, 0.0},
		{"half", 0.5, -6.0206},
		{"double", 2.0, 6.0206},
		{"tenth", 0.1, -20.0},
		{"zero", 0.0, MinDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := LinearToDb(tt.linear)
			if math.Abs(db-tt.db) > 0.001 {
				t.Errorf("LinearToDb(%f) = %f, want %f", tt.linear, db, tt.db)
			}

			if tt.linear > 0 {
				linear := DbToLinear(tt.db)
				if math.Abs(linear-tt.linear) > 0.001 {
					t.Errorf("DbToLinear(%f) = %f, want %f", tt.db, linear, tt.linear)
				}
			}
		})
	}

	if DbToLinear(MinDB) != 0 {
		t.Errorf("DbToLinear(MinDB) = %f, want 0", DbToLinear(MinDB))
	}
}

func TestApplyBuffer(t *testing.T) {
	buffer := []float32{1.0, -1.0, 0.5, -0.5}
	expected := []float32{0.5, -0.5, 0.25, -0.25}

	ApplyBuffer(buffer, 0.5)

	for i, v := range buffer {
		if math.Abs(float64(v-expected[i])) > 0.001 {
			t.Errorf("ApplyBuffer: buffer[%d] = %f, want %f", i, v, expected[i])
		}
	}
}

func TestHardClip(t *testing.T) {
	tests := []struct {
		input     float32
		threshold float32
		want      float32
	}{
		{0.5, 1.0, 0.5},
		{1.5, 1.0, 1.0},
		{-1.5, 1.0, -1.0},
		{0.8, 0.5, 0.5},
	}

	for _, tt := range tests {
		if got := HardClip(tt.input, tt.threshold); got != tt.want {
			t.Errorf("HardClip(%f, %f) = %f, want %f", tt.input, tt.threshold, got, tt.want)
		}
	}

	buffer := []float32{2, -2, 0.25}
	HardClipBuffer(buffer, 1)
	if buffer[0] != 1 || buffer[1] != -1 || buffer[2] != 0.25 {
		t.Errorf("HardClipBuffer = %v", buffer)
	}
}

func TestToPCM16(t *testing.T) {
	tests := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, math.MaxInt16},
		{-1, -math.MaxInt16},
		{3, math.MaxInt16},
		{-3, -math.MaxInt16},
		{0.5, 16383},
	}

	for _, tt := range tests {
		if got := ToPCM16(tt.in); got != tt.want {
			t.Errorf("ToPCM16(%f) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

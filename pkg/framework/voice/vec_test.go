package voice

import (
	"math"
	"testing"
)

func TestVec3(t *testing.T) {
	a := Vec3{1, 2, 2}
	b := Vec3{1, 0, 0}

	if got := a.Add(b); got != (Vec3{2, 2, 2}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Vec3{0, 2, 2}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 4}) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Length(); got != 3 {
		t.Errorf("Length = %f, want 3", got)
	}
	if got := a.Distance(b); math.Abs(got-math.Sqrt(8)) > 1e-12 {
		t.Errorf("Distance = %f", got)
	}
	if got := a.Normalize().Length(); math.Abs(got-1) > 1e-12 {
		t.Errorf("normalized length = %f, want 1", got)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Normalize = %v", got)
	}
	if got := a.Dot(b); got != 1 {
		t.Errorf("Dot = %f", got)
	}
}

func TestDataAdvance(t *testing.T) {
	d := NewData("tone", 0.5)
	if !d.Active() || d.Registered() {
		t.Error("new data should be active and unregistered")
	}

	d.Advance(24000, 48000)
	d.Advance(24000, 48000)
	if d.Age != 1 {
		t.Errorf("Age = %f, want 1", d.Age)
	}
	d.Advance(100, 0)
	if d.Age != 1 {
		t.Error("zero sample rate should not change age")
	}

	d.SetMotion(Vec3{1, 2, 3}, Vec3{0, 0, -1}, 0.7)
	if d.Position.Z != 3 || d.Velocity.Z != -1 || d.Radius != 0.7 {
		t.Errorf("SetMotion left %+v", d)
	}
}

package atom

import (
	"errors"
	"math"
	"testing"

	"github.com/audiospace/atomspace/pkg/framework/process"
	"github.com/audiospace/atomspace/pkg/framework/voice"
)

const testSampleRate = 48000.0

// newVoice builds an initialized voice and a context whose inputs hold the
// voice's defaults
func newVoice(t *testing.T, kind Kind, reg *voice.Registry, blockSize int) (Voice, *process.Context) {
	t.Helper()
	v, err := New(kind, reg, testSampleRate, blockSize, nil)
	if err != nil {
		t.Fatalf("New(%s): %v", kind, err)
	}
	t.Cleanup(func() { v.Close() })

	ctx := process.NewContext(testSampleRate, blockSize, int(v.Parameters().Count()))
	v.Parameters().Defaults(ctx.InputBuffer())
	return v, ctx
}

// render runs n samples through v in blocks of the context's size
func render(v Voice, ctx *process.Context, n int) []float32 {
	out := make([]float32, 0, n)
	block := ctx.MaxBlockSize()
	for len(out) < n {
		size := block
		if n-len(out) < size {
			size = n - len(out)
		}
		ctx.SetBlockSize(size)
		v.ProcessAudio(ctx)
		out = append(out, ctx.Output...)
		ctx.Advance()
	}
	return out
}

func peak(buf []float32) float64 {
	var p float64
	for _, s := range buf {
		if a := math.Abs(float64(s)); a > p {
			p = a
		}
	}
	return p
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"tone", KindTone, false},
		{"Kick", KindKick, false},
		{"bassline", KindBassline, false},
		{"bass", KindBassline, false},
		{" womp ", KindWomp, false},
		{"womp_womp", KindWomp, false},
		{"space", KindSpace, false},
		{"snare", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownKind) {
					t.Fatalf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseKind(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
			}
		})
	}

	for _, k := range Kinds() {
		if got, err := ParseKind(k.String()); err != nil || got != k {
			t.Errorf("round trip %s = %v, %v", k, got, err)
		}
	}
	if Kind(42).String() != "unknown" {
		t.Errorf("Kind(42).String() = %s", Kind(42))
	}
}

func TestNewUnknownKind(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	if _, err := New(Kind(42), reg, testSampleRate, 64, nil); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("New(42) error = %v, want ErrUnknownKind", err)
	}
	if _, err := New(KindTone, nil, testSampleRate, 64, nil); err == nil {
		t.Error("New with nil registry should fail")
	}
}

func TestNewInvalidSampleRateUnregisters(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	if _, err := New(KindKick, reg, 0, 64, nil); err == nil {
		t.Fatal("New with sample rate 0 should fail")
	}
	if reg.Len() != 0 {
		t.Errorf("registry holds %d voices after failed New, want 0", reg.Len())
	}
}

func TestRegisterAndClose(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)

	kick, _ := newVoice(t, KindKick, reg, 64)
	womp, _ := newVoice(t, KindWomp, reg, 64)

	if kick.Data().ID != 1 || womp.Data().ID != 2 {
		t.Errorf("IDs = %d, %d; want 1, 2", kick.Data().ID, womp.Data().ID)
	}
	if d, ok := reg.Get(2); !ok || d != womp.Data() {
		t.Error("registry does not return the womp record")
	}
	if womp.Data().Kind != "womp" {
		t.Errorf("record kind = %q, want womp", womp.Data().Kind)
	}

	if err := kick.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := kick.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if reg.Len() != 1 || reg.ActiveCount() != 1 {
		t.Errorf("after Close: Len %d ActiveCount %d, want 1 and 1", reg.Len(), reg.ActiveCount())
	}

	tone, _ := newVoice(t, KindTone, reg, 64)
	if tone.Data().ID != 3 {
		t.Errorf("next ID = %d, want 3 (IDs are not reused)", tone.Data().ID)
	}
}

func TestMotionMetadataAndAge(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	v, ctx := newVoice(t, KindTone, reg, 480)

	copy(ctx.InputBuffer(), []float64{1, 2, 3, 0.5, 0, -0.5, 0})
	render(v, ctx, 4800)

	d := v.Data()
	if d.Position != (Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Position = %+v", d.Position)
	}
	if d.Velocity != (Vec3{X: 0.5, Y: 0, Z: -0.5}) {
		t.Errorf("Velocity = %+v", d.Velocity)
	}
	if d.Radius != defaultToneRadius {
		t.Errorf("Radius = %f, want default %f for a zero input", d.Radius, defaultToneRadius)
	}
	if math.Abs(d.Age-0.1) > 1e-9 {
		t.Errorf("Age = %f, want 0.1", d.Age)
	}
}

func TestToneOutput(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	v, ctx := newVoice(t, KindTone, reg, 64)

	out := render(v, ctx, 4800)
	if out[0] != 0 {
		t.Errorf("first sample = %f, want 0", out[0])
	}
	if p := peak(out); math.Abs(p-0.1) > 1e-3 {
		t.Errorf("peak = %f, want 0.1", p)
	}

	// A non-positive frequency input falls back to 440 Hz
	ctx.InputBuffer()[ToneFreq] = -10
	render(v, ctx, 64)
	if got := v.(*Tone).Values()[ToneFreq]; got != 440 {
		t.Errorf("resolved freq = %f, want 440", got)
	}
}

func TestMissingInputsTakeDefaults(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	v, ctx := newVoice(t, KindWomp, reg, 64)

	ctx.SetInputCount(0)
	render(v, ctx, 64)

	values := v.(*Womp).Values()
	want := map[int]float64{
		ParamRadius:    0.8,
		WompKickFreq:   60,
		WompBassFreq:   110,
		WompAmp:        0.2,
		WompBPM:        120,
		WompKickDecay:  0.15,
		WompModDepth:   0.1,
		WompDistortion: 0.3,
		WompAttack:     0.01,
		WompRelease:    0.1,
		WompSidechain:  0.8,
		WompThreshold:  0.05,
		WompRatio:      10,
	}
	for i, w := range want {
		if values[i] != w {
			t.Errorf("input %d = %f, want %f", i, values[i], w)
		}
	}
}

func TestInactiveVoiceIsSilent(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	v, ctx := newVoice(t, KindTone, reg, 64)

	reg.SetActive(v.Data().ID, false)
	for i := range ctx.Output {
		ctx.Output[i] = 1
	}
	if p := peak(render(v, ctx, 640)); p != 0 {
		t.Errorf("inactive voice peak = %f, want 0", p)
	}

	reg.SetActive(v.Data().ID, true)
	if p := peak(render(v, ctx, 640)); p == 0 {
		t.Error("reactivated voice is silent")
	}
}

func TestSpaceCountsActiveVoices(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	tone, _ := newVoice(t, KindTone, reg, 64)
	newVoice(t, KindKick, reg, 64)
	space, ctx := newVoice(t, KindSpace, reg, 64)

	if space.Data().Registered() {
		t.Error("space counter should not be registered")
	}

	out := render(space, ctx, 64)
	for i, s := range out {
		if s != 2 {
			t.Fatalf("sample %d = %f, want 2", i, s)
		}
	}

	reg.SetActive(tone.Data().ID, false)
	if out := render(space, ctx, 64); out[63] != 1 {
		t.Errorf("after deactivating tone = %f, want 1", out[63])
	}

	tone.Close()
	reg.Clear()
	if out := render(space, ctx, 64); out[0] != 0 {
		t.Errorf("after Clear = %f, want 0", out[0])
	}

	if space.(*Space).Size() != 10 {
		t.Errorf("Size = %f, want 10", space.(*Space).Size())
	}
}

func TestRealtimeNoAllocation(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			v, ctx := newVoice(t, kind, reg, 64)
			allocs := testing.AllocsPerRun(100, func() {
				v.ProcessAudio(ctx)
			})
			if allocs != 0 {
				t.Errorf("ProcessAudio allocated %f times per block, want 0", allocs)
			}
		})
	}
}

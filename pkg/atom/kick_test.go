package atom

import (
	"testing"

	"github.com/audiospace/atomspace/pkg/framework/voice"
)

func TestKickFiresOnEveryBeat(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	v, ctx := newVoice(t, KindKick, reg, 64)
	kick := v.(*Kick)

	out := render(v, ctx, 48000)

	if kick.Beats() != 2 {
		t.Fatalf("Beats = %d, want 2 in one second at 120 bpm", kick.Beats())
	}

	before := peak(out[23800:24000])
	after := peak(out[24000:24200])
	if after < 0.25 {
		t.Errorf("peak after second beat = %f, want close to amp 0.3", after)
	}
	if before > 0.02 {
		t.Errorf("peak before second beat = %f, want a decayed tail", before)
	}
	if p := peak(out); p > 0.3 {
		t.Errorf("peak = %f exceeds amp", p)
	}
}

func TestKickSweepStartsHigh(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	v, ctx := newVoice(t, KindKick, reg, 1)
	kick := v.(*Kick)

	render(v, ctx, 1)
	if f := kick.Frequency(); f < 179 || f > 180 {
		t.Errorf("frequency after trigger = %f, want just under 180", f)
	}

	render(v, ctx, 4000)
	if f := kick.Frequency(); f != 60 {
		t.Errorf("frequency after glide = %f, want 60", f)
	}
}

func TestKickManualTrigger(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	reg.SetTempo(20)
	v, ctx := newVoice(t, KindKick, reg, 64)
	kick := v.(*Kick)

	// Let the beat at sample 0 die out; the next beat is 7.2 s away
	render(v, ctx, 70400)
	if kick.Envelope() != 0 {
		t.Fatalf("envelope = %f, want 0 after 1.4 s", kick.Envelope())
	}

	ctx.InputBuffer()[KickTrigger] = 1
	render(v, ctx, 64)
	first := kick.Envelope()
	if first < 0.9 {
		t.Fatalf("envelope after rising edge = %f, want near 1", first)
	}

	// Held high: no retrigger
	render(v, ctx, 64)
	if kick.Envelope() >= first {
		t.Errorf("held trigger retriggered: %f >= %f", kick.Envelope(), first)
	}

	ctx.InputBuffer()[KickTrigger] = 0
	render(v, ctx, 6400)
	low := kick.Envelope()

	ctx.InputBuffer()[KickTrigger] = 1
	render(v, ctx, 64)
	if kick.Envelope() <= low || kick.Envelope() < 0.9 {
		t.Errorf("second rising edge did not retrigger: %f", kick.Envelope())
	}
	if kick.Beats() != 1 {
		t.Errorf("clock beats = %d, want 1; manual triggers do not count", kick.Beats())
	}
}

func TestKickTempoPolicy(t *testing.T) {
	t.Run("shared ignores voice tempo", func(t *testing.T) {
		reg := voice.NewRegistry(voice.TempoShared)
		v, ctx := newVoice(t, KindKick, reg, 64)
		ctx.InputBuffer()[KickBPM] = 60

		render(v, ctx, 24001)
		if reg.Tempo() != 120 {
			t.Errorf("registry tempo = %f, want 120", reg.Tempo())
		}
		if b := v.(*Kick).Beats(); b != 2 {
			t.Errorf("Beats = %d, want 2 at the shared 120 bpm", b)
		}
	})

	t.Run("last writer follows voice tempo", func(t *testing.T) {
		reg := voice.NewRegistry(voice.TempoLastWriter)
		v, ctx := newVoice(t, KindKick, reg, 64)
		ctx.InputBuffer()[KickBPM] = 60

		render(v, ctx, 24001)
		if reg.Tempo() != 60 {
			t.Errorf("registry tempo = %f, want 60", reg.Tempo())
		}
		if b := v.(*Kick).Beats(); b != 1 {
			t.Errorf("Beats = %d, want 1 at 60 bpm", b)
		}
	})
}

func TestKickBarPosition(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	v, ctx := newVoice(t, KindKick, reg, 64)
	ctx.InputBuffer()[KickBeatsPerBar] = 3
	kick := v.(*Kick)

	// Beats at 0, 0.5, 1.0, 1.5 s
	render(v, ctx, 72001)
	if kick.Beats() != 4 {
		t.Fatalf("Beats = %d, want 4", kick.Beats())
	}
	if kick.BarPosition() != 0 {
		t.Errorf("BarPosition = %d, want 0 on the fourth beat in 3/4", kick.BarPosition())
	}
}

func TestKickReset(t *testing.T) {
	reg := voice.NewRegistry(voice.TempoShared)
	v, ctx := newVoice(t, KindKick, reg, 64)
	kick := v.(*Kick)

	render(v, ctx, 30000)
	v.Reset()
	if kick.Beats() != 0 || kick.Envelope() != 0 || kick.Phase() != 0 {
		t.Errorf("after Reset: beats %d env %f phase %f", kick.Beats(), kick.Envelope(), kick.Phase())
	}

	render(v, ctx, 1)
	if kick.Beats() != 1 {
		t.Errorf("reset clock did not fire on its first tick")
	}
}

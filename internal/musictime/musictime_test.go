// ABOUTME: Tests for musical time conversion
// ABOUTME: Covers round trips, bar boundaries and clamping behavior
package musictime

import (
	"math"
	"testing"
)

func TestSecondsToPositionAt120(t *testing.T) {
	sig := DefaultSignature()

	// At 120 BPM 4/4, one bar is 2.0 seconds
	pos := SecondsToPosition(2.0, 120, sig)
	if pos.Bar != 2 || pos.Beat != 1 || pos.Tick != 0 {
		t.Errorf("expected bar 2 beat 1 tick 0, got %+v", pos)
	}

	pos = SecondsToPosition(0, 120, sig)
	if pos.Bar != 1 || pos.Beat != 1 || pos.Tick != 0 {
		t.Errorf("expected bar 1 beat 1 tick 0 at t=0, got %+v", pos)
	}

	// Half a beat in: 0.25s at 120 BPM
	pos = SecondsToPosition(0.25, 120, sig)
	if pos.Bar != 1 || pos.Beat != 1 || pos.Tick != 480 {
		t.Errorf("expected tick 480 at half beat, got %+v", pos)
	}
}

func TestPositionToSeconds(t *testing.T) {
	sig := DefaultSignature()

	secs := PositionToSeconds(Position{Bar: 2, Beat: 1, Tick: 0}, 120, sig)
	if math.Abs(secs-2.0) > 1e-9 {
		t.Errorf("expected 2.0s, got %f", secs)
	}

	secs = PositionToSeconds(Position{Bar: 1, Beat: 3, Tick: 240}, 120, sig)
	want := 2*0.5 + 0.125
	if math.Abs(secs-want) > 1e-9 {
		t.Errorf("expected %fs, got %f", want, secs)
	}
}

func TestRoundTripWithinOneTick(t *testing.T) {
	cases := []struct {
		seconds float64
		bpm     float64
		sig     Signature
	}{
		{0, 120, DefaultSignature()},
		{1.234567, 120, DefaultSignature()},
		{17.5, 93.7, NewSignature(7, 8)},
		{600.001, 174, NewSignature(3, 4)},
		{0.0001, 20, DefaultSignature()},
		{42.42, 999, NewSignature(6, 8)},
	}

	for _, c := range cases {
		pos := SecondsToPosition(c.seconds, c.bpm, c.sig)
		back := PositionToSeconds(pos, c.bpm, c.sig)

		tickDur := BeatDuration(c.bpm) / TicksPerBeat
		if math.Abs(back-c.seconds) > tickDur {
			t.Errorf("round trip %f @ %g BPM %d/%d: got %f (off by %g, tick=%g)",
				c.seconds, c.bpm, c.sig.Numerator, c.sig.Denominator,
				back, math.Abs(back-c.seconds), tickDur)
		}
	}
}

func TestNegativeTimeClamps(t *testing.T) {
	pos := SecondsToPosition(-5, 120, DefaultSignature())
	if pos.Bar != 1 || pos.Beat != 1 || pos.Tick != 0 {
		t.Errorf("negative time should clamp to bar 1 beat 1, got %+v", pos)
	}
}

func TestTempoClamping(t *testing.T) {
	if got := ClampBPM(0); got != MinBPM {
		t.Errorf("zero BPM should clamp to %f, got %f", MinBPM, got)
	}
	if got := ClampBPM(-10); got != MinBPM {
		t.Errorf("negative BPM should clamp to %f, got %f", MinBPM, got)
	}
	if got := ClampBPM(5000); got != MaxBPM {
		t.Errorf("huge BPM should clamp to %f, got %f", MaxBPM, got)
	}

	// A clamped tempo still produces finite positions
	pos := SecondsToPosition(1, 0, DefaultSignature())
	if pos.Bar < 1 {
		t.Errorf("position under clamped tempo invalid: %+v", pos)
	}
}

func TestBarBoundaries(t *testing.T) {
	sig := DefaultSignature()

	prev := PrevBarStart(3.1, 120, sig)
	if math.Abs(prev-2.0) > 1e-9 {
		t.Errorf("expected prev bar start 2.0, got %f", prev)
	}

	next := NextBarStart(3.1, 120, sig)
	if math.Abs(next-4.0) > 1e-9 {
		t.Errorf("expected next bar start 4.0, got %f", next)
	}

	// Exactly on a boundary: prev is that bar, next is the following one
	prev = PrevBarStart(2.0, 120, sig)
	if math.Abs(prev-2.0) > 1e-9 {
		t.Errorf("expected prev bar start 2.0 on boundary, got %f", prev)
	}
	next = NextBarStart(2.0, 120, sig)
	if math.Abs(next-4.0) > 1e-9 {
		t.Errorf("expected next bar start 4.0 on boundary, got %f", next)
	}
}

func TestSignatureClamping(t *testing.T) {
	sig := NewSignature(0, 99)
	if sig.Numerator != 1 || sig.Denominator != 16 {
		t.Errorf("expected clamped signature 1/16, got %d/%d", sig.Numerator, sig.Denominator)
	}
}

func TestGrid(t *testing.T) {
	g := NewGrid(120, DefaultSignature(), 44100)

	// At 120 BPM, one beat is 0.5s = 22050 samples
	if g.SamplesPerBeat() != 22050 {
		t.Errorf("expected 22050 samples per beat, got %f", g.SamplesPerBeat())
	}
	if g.SamplesPerBar() != 88200 {
		t.Errorf("expected 88200 samples per bar, got %f", g.SamplesPerBar())
	}

	pos := g.PositionAt(0)
	if pos.Bar != 1 || pos.Beat != 1 {
		t.Errorf("expected bar 1 beat 1 at sample 0, got %+v", pos)
	}

	if got := g.NextBeatAfter(0); got != 22050 {
		t.Errorf("expected next beat at 22050, got %d", got)
	}
	if got := g.NextBarAfter(22050); got != 88200 {
		t.Errorf("expected next bar at 88200, got %d", got)
	}
}

func TestSnapToGrid(t *testing.T) {
	g := NewGrid(120, DefaultSignature(), 48000)

	// One beat = 24000 samples; 24500 snaps back to 24000
	if got := g.SnapToGrid(24500, 1); got != 24000 {
		t.Errorf("expected snap to 24000, got %d", got)
	}

	// Sixteenth grid: step = 6000 samples
	if got := g.SnapToGrid(8000, 4); got != 6000 {
		t.Errorf("expected snap to 6000, got %d", got)
	}

	// Zero division treated as beat grid
	if got := g.SnapToGrid(24500, 0); got != 24000 {
		t.Errorf("expected snap to 24000 with zero division, got %d", got)
	}
}

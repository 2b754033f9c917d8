// ABOUTME: Tests for audio types and conversions
// ABOUTME: Covers sample conversion and dB helpers
package audio

import (
	"math"
	"testing"
)

func TestSampleConversionRoundTrip(t *testing.T) {
	values := []int16{0, 1, -1, 16384, -16384, 32767, -32768}

	for _, v := range values {
		f := SampleFromInt16(v)
		back := SampleToInt16(f)

		// One LSB of tolerance from the asymmetric int16 range
		diff := int(back) - int(v)
		if diff < -1 || diff > 1 {
			t.Errorf("round trip %d -> %f -> %d", v, f, back)
		}
	}
}

func TestSampleToInt16Clamps(t *testing.T) {
	if got := SampleToInt16(2.0); got != 32767 {
		t.Errorf("expected clamp to 32767, got %d", got)
	}
	if got := SampleToInt16(-2.0); got != -32767 {
		t.Errorf("expected clamp to -32767, got %d", got)
	}
}

func TestLinearToDB(t *testing.T) {
	if got := LinearToDB(1.0, -60); got != 0 {
		t.Errorf("full scale should be 0 dB, got %f", got)
	}

	got := LinearToDB(0.5, -60)
	if math.Abs(got-(-6.0206)) > 0.001 {
		t.Errorf("half scale should be ~-6.02 dB, got %f", got)
	}

	// Silence clamps to the floor, never -Inf
	if got := LinearToDB(0, -60); got != -60 {
		t.Errorf("silence should report the floor, got %f", got)
	}
	if got := LinearToDB(1e-9, -60); got != -60 {
		t.Errorf("sub-floor level should clamp to floor, got %f", got)
	}
}

func TestDBToLinear(t *testing.T) {
	if math.Abs(DBToLinear(0)-1.0) > 1e-12 {
		t.Error("0 dB should be unity gain")
	}
	if math.Abs(DBToLinear(-6.0206)-0.5) > 0.001 {
		t.Error("-6.02 dB should be half scale")
	}
}

func TestSourceBuffer(t *testing.T) {
	buf := NewSourceBuffer(48000, 48000)

	if buf.Frames() != 48000 {
		t.Errorf("expected 48000 frames, got %d", buf.Frames())
	}
	if buf.DurationSeconds() != 1.0 {
		t.Errorf("expected 1s duration, got %f", buf.DurationSeconds())
	}
}

// ABOUTME: Tests for buffer and streaming resamplers
// ABOUTME: Checks length ratios, identity passthrough, boundary continuity
package resample

import (
	"math"
	"testing"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

func rampBuffer(frames, rate int) *audio.SourceBuffer {
	b := audio.NewSourceBuffer(frames, rate)
	for i := 0; i < frames; i++ {
		b.Left[i] = float64(i)
		b.Right[i] = float64(i)
	}
	return b
}

func TestBufferIdentity(t *testing.T) {
	src := rampBuffer(100, 48000)
	if got := Buffer(src, 48000); got != src {
		t.Error("matching rates should return the input unchanged")
	}
}

func TestBufferUpsampleLength(t *testing.T) {
	src := rampBuffer(44100, 44100)
	out := Buffer(src, 48000)
	if out.SampleRate != 48000 {
		t.Errorf("rate = %d, want 48000", out.SampleRate)
	}
	if math.Abs(float64(out.Frames())-48000) > 2 {
		t.Errorf("frames = %d, want ~48000", out.Frames())
	}
}

func TestBufferDownsamplePreservesRamp(t *testing.T) {
	src := rampBuffer(48000, 48000)
	out := Buffer(src, 24000)

	// A linear ramp resampled by 2 should step by 2
	if math.Abs(out.Left[100]-200) > 1 {
		t.Errorf("out[100] = %v, want ~200", out.Left[100])
	}
}

func TestBufferEmpty(t *testing.T) {
	out := Buffer(audio.NewSourceBuffer(0, 44100), 48000)
	if out.Frames() != 0 || out.SampleRate != 48000 {
		t.Errorf("empty resample = %d frames at %d", out.Frames(), out.SampleRate)
	}
}

func TestStreamMatchesBufferOnRamp(t *testing.T) {
	// Feed the same ramp in chunks and whole; the outputs should agree
	const inRate, outRate, frames = 44100, 48000, 4410

	whole := rampBuffer(frames, inRate)
	want := Buffer(whole, outRate)

	s := NewStream(inRate, outRate)
	var gotL []float64
	for off := 0; off < frames; off += 441 {
		end := off + 441
		l, _ := s.Process(whole.Left[off:end], whole.Right[off:end])
		gotL = append(gotL, l...)
	}

	n := len(gotL)
	if len(want.Left) < n {
		n = len(want.Left)
	}
	if n < frames/2 {
		t.Fatalf("streamed output too short: %d", len(gotL))
	}
	for i := 0; i < n; i++ {
		if math.Abs(gotL[i]-want.Left[i]) > 1.0 {
			t.Fatalf("sample %d: stream %v vs whole %v", i, gotL[i], want.Left[i])
		}
	}
}

func TestStreamReset(t *testing.T) {
	s := NewStream(48000, 48000)
	s.Process([]float64{1, 2, 3}, []float64{1, 2, 3})
	s.Reset()

	l, _ := s.Process([]float64{0, 1, 2, 3}, []float64{0, 1, 2, 3})
	if len(l) == 0 || l[0] != 0 {
		t.Errorf("after reset first sample = %v, want 0", l)
	}
}

func TestStreamEmptyChunk(t *testing.T) {
	s := NewStream(44100, 48000)
	if l, r := s.Process(nil, nil); l != nil || r != nil {
		t.Error("empty chunk should produce no output")
	}
}

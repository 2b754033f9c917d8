// ABOUTME: Audio type definitions for the glasswing core
// ABOUTME: Defines formats and the stereo SourceBuffer regions play from
package audio

import "math"

const (
	// DefaultSampleRate is the session sample rate unless a project overrides it
	DefaultSampleRate = 48000

	// DefaultChannels is stereo; the core is a two-channel summing engine
	DefaultChannels = 2
)

// Format describes decoded audio material
type Format struct {
	SampleRate int
	Channels   int
}

// SourceBuffer holds fully decoded, de-interleaved stereo audio for a region.
// Mono material is duplicated into both channels at load time so the render
// path never branches on channel count.
type SourceBuffer struct {
	Left       []float64
	Right      []float64
	SampleRate int
}

// NewSourceBuffer allocates a silent buffer of the given length in frames
func NewSourceBuffer(frames, sampleRate int) *SourceBuffer {
	return &SourceBuffer{
		Left:       make([]float64, frames),
		Right:      make([]float64, frames),
		SampleRate: sampleRate,
	}
}

// Frames returns the buffer length in sample frames
func (b *SourceBuffer) Frames() int {
	return len(b.Left)
}

// DurationSeconds returns the buffer length in seconds
func (b *SourceBuffer) DurationSeconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Left)) / float64(b.SampleRate)
}

// SampleFromInt16 converts a 16-bit PCM sample to a float in [-1, 1)
func SampleFromInt16(s int16) float64 {
	return float64(s) / 32768.0
}

// SampleToInt16 converts a float sample to 16-bit PCM with clamping
func SampleToInt16(s float64) int16 {
	if s > 1.0 {
		s = 1.0
	} else if s < -1.0 {
		s = -1.0
	}
	return int16(s * 32767.0)
}

// LinearToDB converts a linear amplitude to decibels, clamped at floor.
// Silence maps to the floor rather than -Inf so meter values stay finite.
func LinearToDB(x, floor float64) float64 {
	if x <= 0 {
		return floor
	}
	db := 20 * math.Log10(x)
	if db < floor {
		return floor
	}
	return db
}

// DBToLinear converts decibels to a linear amplitude
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// ABOUTME: Musical time conversion between seconds and bar/beat/tick
// ABOUTME: Pure functions; tempo and signature are always caller-supplied
package musictime

import "math"

// TicksPerBeat is the fixed tick resolution of one beat
const TicksPerBeat = 960

// BPM limits; out-of-range tempos are clamped, never rejected, because a
// running transport must not fail mid-playback.
const (
	MinBPM = 20.0
	MaxBPM = 999.0
)

// Signature is a musical time signature
type Signature struct {
	Numerator   uint
	Denominator uint
}

// NewSignature clamps both fields into a musically sane range
func NewSignature(numerator, denominator uint) Signature {
	return Signature{
		Numerator:   clampUint(numerator, 1, 16),
		Denominator: clampUint(denominator, 1, 16),
	}
}

// DefaultSignature is 4/4
func DefaultSignature() Signature {
	return Signature{Numerator: 4, Denominator: 4}
}

// BeatsPerBar returns the number of beats in one bar
func (s Signature) BeatsPerBar() uint {
	if s.Numerator == 0 {
		return 4
	}
	return s.Numerator
}

// Position is a musician-facing musical position. Bar and Beat are 1-indexed;
// Tick is 0-indexed within its beat.
type Position struct {
	Bar  int
	Beat int
	Tick int
}

// ClampBPM normalizes a tempo into the supported range
func ClampBPM(bpm float64) float64 {
	if bpm < MinBPM || math.IsNaN(bpm) {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// BeatDuration returns the length of one beat in seconds
func BeatDuration(bpm float64) float64 {
	return 60.0 / ClampBPM(bpm)
}

// BarDuration returns the length of one bar in seconds
func BarDuration(bpm float64, sig Signature) float64 {
	return BeatDuration(bpm) * float64(sig.BeatsPerBar())
}

// SecondsToPosition converts an absolute time to a musical position under the
// supplied tempo and signature. Negative times clamp to zero.
func SecondsToPosition(seconds, bpm float64, sig Signature) Position {
	if seconds < 0 {
		seconds = 0
	}

	totalTicks := int64(math.Round(seconds / BeatDuration(bpm) * TicksPerBeat))
	ticksPerBar := int64(TicksPerBeat) * int64(sig.BeatsPerBar())

	bar := totalTicks / ticksPerBar
	rem := totalTicks % ticksPerBar

	return Position{
		Bar:  int(bar) + 1,
		Beat: int(rem/TicksPerBeat) + 1,
		Tick: int(rem % TicksPerBeat),
	}
}

// PositionToSeconds converts a musical position back to absolute time under
// the supplied tempo and signature. It is the exact inverse of
// SecondsToPosition up to one tick of rounding.
func PositionToSeconds(pos Position, bpm float64, sig Signature) float64 {
	bar := pos.Bar
	if bar < 1 {
		bar = 1
	}
	beat := pos.Beat
	if beat < 1 {
		beat = 1
	}

	totalBeats := float64(bar-1)*float64(sig.BeatsPerBar()) +
		float64(beat-1) +
		float64(pos.Tick)/TicksPerBeat

	return totalBeats * BeatDuration(bpm)
}

// PrevBarStart returns the start time of the bar containing seconds
func PrevBarStart(seconds, bpm float64, sig Signature) float64 {
	pos := SecondsToPosition(seconds, bpm, sig)
	return PositionToSeconds(Position{Bar: pos.Bar, Beat: 1, Tick: 0}, bpm, sig)
}

// NextBarStart returns the start time of the bar after the one containing
// seconds
func NextBarStart(seconds, bpm float64, sig Signature) float64 {
	pos := SecondsToPosition(seconds, bpm, sig)
	return PositionToSeconds(Position{Bar: pos.Bar + 1, Beat: 1, Tick: 0}, bpm, sig)
}

func clampUint(v, lo, hi uint) uint {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

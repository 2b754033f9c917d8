// ABOUTME: Sample-domain beat grid derived from tempo and signature
// ABOUTME: Beat/bar boundary lookup and snap-to-grid for editing operations
package musictime

import "math"

// Grid is a pre-calculated beat grid in sample units for a fixed tempo,
// signature and sample rate. Rebuild it when any of those change.
type Grid struct {
	BPM        float64
	Sig        Signature
	SampleRate int

	samplesPerBeat float64
	samplesPerBar  float64
}

// NewGrid builds a beat grid
func NewGrid(bpm float64, sig Signature, sampleRate int) Grid {
	bpm = ClampBPM(bpm)
	spb := BeatDuration(bpm) * float64(sampleRate)

	return Grid{
		BPM:            bpm,
		Sig:            sig,
		SampleRate:     sampleRate,
		samplesPerBeat: spb,
		samplesPerBar:  spb * float64(sig.BeatsPerBar()),
	}
}

// SamplesPerBeat returns the beat length in samples
func (g Grid) SamplesPerBeat() float64 {
	return g.samplesPerBeat
}

// SamplesPerBar returns the bar length in samples
func (g Grid) SamplesPerBar() float64 {
	return g.samplesPerBar
}

// PositionAt returns the musical position at an absolute sample
func (g Grid) PositionAt(sample uint64) Position {
	seconds := float64(sample) / float64(g.SampleRate)
	return SecondsToPosition(seconds, g.BPM, g.Sig)
}

// NextBeatAfter returns the first beat boundary strictly after sample
func (g Grid) NextBeatAfter(sample uint64) uint64 {
	beat := math.Floor(float64(sample)/g.samplesPerBeat) + 1
	return uint64(math.Round(beat * g.samplesPerBeat))
}

// NextBarAfter returns the first bar boundary strictly after sample
func (g Grid) NextBarAfter(sample uint64) uint64 {
	bar := math.Floor(float64(sample)/g.samplesPerBar) + 1
	return uint64(math.Round(bar * g.samplesPerBar))
}

// SnapToGrid rounds sample to the nearest grid line at the given beat
// division (1 = beat, 2 = eighth at 4/4, 4 = sixteenth, ...)
func (g Grid) SnapToGrid(sample uint64, division uint) uint64 {
	if division == 0 {
		division = 1
	}
	step := g.samplesPerBeat / float64(division)
	n := math.Round(float64(sample) / step)
	if n < 0 {
		n = 0
	}
	return uint64(math.Round(n * step))
}

// ABOUTME: Region model: an audio-bearing interval owned by a track
// ABOUTME: Includes per-region gain and fade-in/out curve shapes
package schedule

import (
	"math"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

// FadeCurve selects the gain shape of a region fade
type FadeCurve int

const (
	FadeLinear FadeCurve = iota
	FadeExponential
	FadeLogarithmic
	FadeSCurve
)

// GainAt evaluates the curve at a normalized position in [0, 1]
func (f FadeCurve) GainAt(pos float64) float64 {
	if pos < 0 {
		pos = 0
	} else if pos > 1 {
		pos = 1
	}

	switch f {
	case FadeExponential:
		return pos * pos
	case FadeLogarithmic:
		return math.Sqrt(pos)
	case FadeSCurve:
		return pos * pos * (3 - 2*pos)
	}
	return pos
}

// Fade is a fade length plus curve shape
type Fade struct {
	Seconds float64
	Curve   FadeCurve
}

// Region is an audio-bearing interval on the timeline. It is owned by its
// track and destroyed with it. Overlap within a track is not policed here;
// that is a product-layer decision.
type Region struct {
	ID           string
	TrackID      string
	StartSeconds float64
	EndSeconds   float64

	// Gain is a linear multiplier applied on top of bus gain staging
	Gain float64

	FadeIn  Fade
	FadeOut Fade

	Source *audio.SourceBuffer
}

// StartSample returns the region start in sample units
func (r *Region) StartSample(sampleRate int) uint64 {
	if r.StartSeconds <= 0 {
		return 0
	}
	return uint64(r.StartSeconds * float64(sampleRate))
}

// EndSample returns the region end in sample units (exclusive)
func (r *Region) EndSample(sampleRate int) uint64 {
	if r.EndSeconds <= 0 {
		return 0
	}
	return uint64(r.EndSeconds * float64(sampleRate))
}

// Contains reports whether the playhead falls inside [start, end)
func (r *Region) Contains(pos uint64, sampleRate int) bool {
	return pos >= r.StartSample(sampleRate) && pos < r.EndSample(sampleRate)
}

// GainAtOffset evaluates the region envelope (gain plus fades) at an offset
// in seconds from the region start
func (r *Region) GainAtOffset(offsetSeconds float64) float64 {
	g := r.Gain
	if g == 0 {
		g = 1.0
	}

	length := r.EndSeconds - r.StartSeconds
	if length <= 0 {
		return 0
	}

	if r.FadeIn.Seconds > 0 && offsetSeconds < r.FadeIn.Seconds {
		g *= r.FadeIn.Curve.GainAt(offsetSeconds / r.FadeIn.Seconds)
	}
	if r.FadeOut.Seconds > 0 {
		remaining := length - offsetSeconds
		if remaining < r.FadeOut.Seconds {
			g *= r.FadeOut.Curve.GainAt(remaining / r.FadeOut.Seconds)
		}
	}
	return g
}

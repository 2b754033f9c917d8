// ABOUTME: Linear-interpolation resampler for sample rate conversion
// ABOUTME: Whole-buffer conversion for sources, streaming for live capture
package resample

import (
	"math"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

// Buffer converts a source buffer to the target sample rate with linear
// interpolation. Returns the input unchanged when rates already match.
func Buffer(src *audio.SourceBuffer, targetRate int) *audio.SourceBuffer {
	if src == nil || src.SampleRate == targetRate || src.SampleRate <= 0 || targetRate <= 0 {
		return src
	}

	inFrames := src.Frames()
	if inFrames == 0 {
		return audio.NewSourceBuffer(0, targetRate)
	}

	ratio := float64(src.SampleRate) / float64(targetRate)
	outFrames := int(float64(inFrames) / ratio)
	out := audio.NewSourceBuffer(outFrames, targetRate)

	for i := 0; i < outFrames; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= inFrames-1 {
			out.Left[i] = src.Left[inFrames-1]
			out.Right[i] = src.Right[inFrames-1]
			continue
		}
		frac := pos - float64(idx)
		out.Left[i] = src.Left[idx]*(1-frac) + src.Left[idx+1]*frac
		out.Right[i] = src.Right[idx]*(1-frac) + src.Right[idx+1]*frac
	}
	return out
}

// Stream resamples a continuous stereo stream chunk by chunk, carrying the
// fractional read position across calls so chunk boundaries stay smooth.
type Stream struct {
	ratio float64

	// position is relative to the current chunk; -1 refers to the last
	// frame of the previous chunk
	position float64
	lastL    float64
	lastR    float64
}

// NewStream creates a streaming resampler between two rates
func NewStream(inputRate, outputRate int) *Stream {
	return &Stream{ratio: float64(inputRate) / float64(outputRate)}
}

// Process converts one input chunk, returning the resampled output. The
// previous chunk's final frame seeds interpolation across the boundary.
func (s *Stream) Process(inL, inR []float64) (outL, outR []float64) {
	n := len(inL)
	if len(inR) < n {
		n = len(inR)
	}
	if n == 0 {
		return nil, nil
	}

	capacity := int(float64(n)/s.ratio) + 2
	outL = make([]float64, 0, capacity)
	outR = make([]float64, 0, capacity)

	pos := s.position
	for {
		idx := int(math.Floor(pos))
		if idx+1 >= n {
			break
		}
		frac := pos - float64(idx)

		var l0, r0 float64
		if idx < 0 {
			l0, r0 = s.lastL, s.lastR
		} else {
			l0, r0 = inL[idx], inR[idx]
		}
		outL = append(outL, l0*(1-frac)+inL[idx+1]*frac)
		outR = append(outR, r0*(1-frac)+inR[idx+1]*frac)
		pos += s.ratio
	}

	// Frame n-1 becomes index -1 of the next chunk
	s.position = pos - float64(n)
	s.lastL = inL[n-1]
	s.lastR = inR[n-1]
	return outL, outR
}

// Reset clears carried state
func (s *Stream) Reset() {
	s.position = 0
	s.lastL = 0
	s.lastR = 0
}

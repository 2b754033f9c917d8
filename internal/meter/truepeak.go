// ABOUTME: True-peak estimation via 4x polyphase sinc interpolation
// ABOUTME: Catches inter-sample overshoot that sample-peak metering misses
package meter

import "math"

const (
	tpPhases       = 4
	tpTapsPerPhase = 12
	tpTaps         = tpPhases * tpTapsPerPhase
)

// tpCoef holds the polyphase decomposition of a Hann-windowed sinc
// interpolation filter, one row per output phase
var tpCoef [tpPhases][tpTapsPerPhase]float64

func init() {
	center := float64(tpTaps-1) / 2

	var proto [tpTaps]float64
	for n := 0; n < tpTaps; n++ {
		t := (float64(n) - center) / tpPhases
		proto[n] = sinc(t) * hann(n, tpTaps)
	}

	// Normalize each phase to unity DC gain so interpolated samples sit at
	// the same scale as the input
	for p := 0; p < tpPhases; p++ {
		sum := 0.0
		for k := 0; k < tpTapsPerPhase; k++ {
			sum += proto[k*tpPhases+p]
		}
		for k := 0; k < tpTapsPerPhase; k++ {
			if sum != 0 {
				tpCoef[p][k] = proto[k*tpPhases+p] / sum
			}
		}
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func hann(n, length int) float64 {
	return 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(length-1))
}

// truePeak tracks the maximum interpolated absolute sample value for one
// channel across the engine's lifetime (until reset)
type truePeak struct {
	hist [tpTapsPerPhase]float64
	idx  int
	max  float64
}

// push feeds one input sample and updates the running true-peak maximum.
// The raw sample participates in the maximum as well, so the estimate is
// never below the plain sample peak.
func (t *truePeak) push(x float64) {
	t.hist[t.idx] = x
	t.idx = (t.idx + 1) % tpTapsPerPhase

	if a := math.Abs(x); a > t.max {
		t.max = a
	}

	for p := 0; p < tpPhases; p++ {
		y := 0.0
		for k := 0; k < tpTapsPerPhase; k++ {
			// hist[idx-1] is the newest sample; walk backwards in time
			j := t.idx - 1 - k
			if j < 0 {
				j += tpTapsPerPhase
			}
			y += tpCoef[p][k] * t.hist[j]
		}
		if a := math.Abs(y); a > t.max {
			t.max = a
		}
	}
}

func (t *truePeak) reset() {
	t.hist = [tpTapsPerPhase]float64{}
	t.idx = 0
	t.max = 0
}

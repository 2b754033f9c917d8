// ABOUTME: Real-time metering engine: peak, RMS, LUFS, true peak, phase
// ABOUTME: Single-writer ingest on the audio path, lock-free snapshot reads
package meter

import (
	"math"
	"sync/atomic"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

const (
	// DBFloor is the lowest reported peak/RMS level; silence maps here
	DBFloor = -60.0

	// LUFSFloor doubles as the absolute gating threshold of BS.1770
	LUFSFloor = -70.0

	momentarySeconds = 0.4
	shortTermSeconds = 3.0
	hopSeconds       = 0.1

	// Loudness histograms span [LUFSFloor, +5] LUFS in 0.1 LU bins
	binWidth = 0.1
	nBins    = 751

	// Rolling crest-factor window in hops (3 s)
	crestHops = 30

	// Short-term values enter the loudness-range history once per second
	lraHopStride = 10
)

// Snapshot is a point-in-time view of all meters. Values are always finite:
// silence reports floors and integrated loudness carries an explicit
// validity flag instead of NaN.
type Snapshot struct {
	PeakDB [2]float64
	RMSDB  [2]float64

	LUFSMomentary       float64
	LUFSShortTerm       float64
	LUFSIntegrated      float64
	LUFSIntegratedValid bool
	LoudnessRangeLU     float64

	TruePeakDB       float64
	PhaseCorrelation float64

	// CrestFactorDB is sample-peak over RMS across the rolling 3 s window;
	// DynamicRangeDB is true-peak over RMS across the whole program since
	// the last reset.
	CrestFactorDB  float64
	DynamicRangeDB float64

	Clipped [2]bool
}

type crestEntry struct {
	peak  float64
	sumSq float64
	n     int
}

// Engine accumulates loudness state from bus output blocks. Ingest runs on
// the audio path and must stay allocation-free apart from snapshot
// publication; Snapshot is a side-effect-free atomic read from any context.
type Engine struct {
	sampleRate int

	kwL, kwR kWeight
	tpL, tpR truePeak

	// Ring of per-sample K-weighted stereo power covering the short-term
	// window; running sums track the momentary and short-term windows.
	ring   []float64
	idx    int
	momLen int
	stLen  int
	momSum float64
	stSum  float64

	hopLen   int
	sinceHop int
	hopCount uint64
	total    uint64

	intCount [nBins]uint64
	intPower [nBins]float64
	lraCount [nBins]uint64

	hopPeakAcc  float64
	hopSumSqAcc float64
	hopNAcc     int
	crestRing   [crestHops]crestEntry
	crestIdx    int

	lifeSumSq float64
	lifeN     uint64

	lastPeak  [2]float64
	lastRMS   [2]float64
	lastPhase float64
	clipped   [2]atomic.Bool

	snap atomic.Pointer[Snapshot]
}

// New creates a metering engine for the given sample rate
func New(sampleRate int) *Engine {
	e := &Engine{
		sampleRate: sampleRate,
		kwL:        newKWeight(float64(sampleRate)),
		kwR:        newKWeight(float64(sampleRate)),
		momLen:     int(momentarySeconds * float64(sampleRate)),
		stLen:      int(shortTermSeconds * float64(sampleRate)),
		hopLen:     int(hopSeconds * float64(sampleRate)),
	}
	e.ring = make([]float64, e.stLen)
	e.publish()
	return e
}

// Ingest consumes one block of bus output. Called once per audio block from
// the render path. Channel slices of unequal length are truncated to the
// shorter one.
func (e *Engine) Ingest(left, right []float64) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	if n == 0 {
		return
	}

	var peakL, peakR, sumSqL, sumSqR, sumLR float64

	for i := 0; i < n; i++ {
		l, r := left[i], right[i]

		if a := math.Abs(l); a > peakL {
			peakL = a
		}
		if a := math.Abs(r); a > peakR {
			peakR = a
		}
		sumSqL += l * l
		sumSqR += r * r
		sumLR += l * r

		e.tpL.push(l)
		e.tpR.push(r)

		kl := e.kwL.process(l)
		kr := e.kwR.process(r)
		p := kl*kl + kr*kr

		old := e.ring[e.idx]
		e.stSum += p - old
		mIdx := e.idx - e.momLen
		if mIdx < 0 {
			mIdx += e.stLen
		}
		e.momSum += p - e.ring[mIdx]
		e.ring[e.idx] = p
		e.idx++
		if e.idx == e.stLen {
			e.idx = 0
		}

		stereo := (l*l + r*r) / 2
		e.hopSumSqAcc += stereo
		e.hopNAcc++
		if a := math.Max(math.Abs(l), math.Abs(r)); a > e.hopPeakAcc {
			e.hopPeakAcc = a
		}
		e.lifeSumSq += stereo
		e.lifeN++

		e.total++
		e.sinceHop++
		if e.sinceHop >= e.hopLen {
			e.hop()
		}
	}

	e.lastPeak[0] = peakL
	e.lastPeak[1] = peakR
	e.lastRMS[0] = math.Sqrt(sumSqL / float64(n))
	e.lastRMS[1] = math.Sqrt(sumSqR / float64(n))

	denom := math.Sqrt(sumSqL * sumSqR)
	if denom > 0 {
		e.lastPhase = sumLR / denom
	} else {
		// Silence has no phase relationship; report a defined neutral value
		e.lastPhase = 0
	}

	if peakL >= 1.0 {
		e.clipped[0].Store(true)
	}
	if peakR >= 1.0 {
		e.clipped[1].Store(true)
	}

	e.publish()
}

// hop closes one 100 ms gating interval: bins the current momentary block
// for integrated gating, records short-term history for LRA, and rotates
// the crest window.
func (e *Engine) hop() {
	e.sinceHop = 0
	e.hopCount++

	if e.total >= uint64(e.momLen) {
		if l := loudnessOf(e.momSum, e.momLen); l >= LUFSFloor {
			b := binFor(l)
			e.intCount[b]++
			e.intPower[b] += e.momSum / float64(e.momLen)
		}
	}

	if e.hopCount%lraHopStride == 0 && e.total >= uint64(e.stLen) {
		if l := loudnessOf(e.stSum, e.stLen); l >= LUFSFloor {
			e.lraCount[binFor(l)]++
		}
	}

	e.crestRing[e.crestIdx] = crestEntry{
		peak:  e.hopPeakAcc,
		sumSq: e.hopSumSqAcc,
		n:     e.hopNAcc,
	}
	e.crestIdx = (e.crestIdx + 1) % crestHops
	e.hopPeakAcc = 0
	e.hopSumSqAcc = 0
	e.hopNAcc = 0

	// Running sums drift under float rounding; recompute exactly every 10 s
	if e.hopCount%100 == 0 {
		e.resum()
	}
}

func (e *Engine) resum() {
	var st float64
	for _, p := range e.ring {
		st += p
	}
	var mom float64
	for k := 0; k < e.momLen; k++ {
		j := e.idx - 1 - k
		if j < 0 {
			j += e.stLen
		}
		mom += e.ring[j]
	}
	e.stSum = st
	e.momSum = mom
}

// Snapshot returns the last published meter state without side effects
func (e *Engine) Snapshot() Snapshot {
	return *e.snap.Load()
}

// ResetClip clears the sticky clip indicators. Safe from any goroutine: the
// flags are atomics, and the snapshot is refreshed by copy rather than by
// reading accumulators the audio path owns.
func (e *Engine) ResetClip() {
	e.clipped[0].Store(false)
	e.clipped[1].Store(false)

	s := *e.snap.Load()
	s.Clipped = [2]bool{}
	e.snap.Store(&s)
}

// Reset clears all accumulated loudness state, filters included. It reads
// and writes every accumulator, so it must not run while Ingest is active;
// use it between offline programs, not on a live session.
func (e *Engine) Reset() {
	e.kwL.reset()
	e.kwR.reset()
	e.tpL.reset()
	e.tpR.reset()
	for i := range e.ring {
		e.ring[i] = 0
	}
	e.idx = 0
	e.momSum = 0
	e.stSum = 0
	e.sinceHop = 0
	e.hopCount = 0
	e.total = 0
	e.intCount = [nBins]uint64{}
	e.intPower = [nBins]float64{}
	e.lraCount = [nBins]uint64{}
	e.hopPeakAcc = 0
	e.hopSumSqAcc = 0
	e.hopNAcc = 0
	e.crestRing = [crestHops]crestEntry{}
	e.crestIdx = 0
	e.lifeSumSq = 0
	e.lifeN = 0
	e.lastPeak = [2]float64{}
	e.lastRMS = [2]float64{}
	e.lastPhase = 0
	e.clipped[0].Store(false)
	e.clipped[1].Store(false)
	e.publish()
}

func (e *Engine) publish() {
	integrated, valid := e.computeIntegrated()

	s := &Snapshot{
		PeakDB: [2]float64{
			audio.LinearToDB(e.lastPeak[0], DBFloor),
			audio.LinearToDB(e.lastPeak[1], DBFloor),
		},
		RMSDB: [2]float64{
			audio.LinearToDB(e.lastRMS[0], DBFloor),
			audio.LinearToDB(e.lastRMS[1], DBFloor),
		},
		LUFSMomentary:       loudnessOf(e.momSum, e.momLen),
		LUFSShortTerm:       loudnessOf(e.stSum, e.stLen),
		LUFSIntegrated:      integrated,
		LUFSIntegratedValid: valid,
		LoudnessRangeLU:     e.computeLRA(),
		TruePeakDB:          audio.LinearToDB(math.Max(e.tpL.max, e.tpR.max), DBFloor),
		PhaseCorrelation:    e.lastPhase,
		CrestFactorDB:       e.computeCrest(),
		DynamicRangeDB:      e.computeDynamicRange(),
		Clipped:             [2]bool{e.clipped[0].Load(), e.clipped[1].Load()},
	}
	e.snap.Store(s)
}

// computeIntegrated applies the relative gate: blocks more than 10 LU below
// the ungated running average are excluded. Returns false while no gated
// blocks qualify yet.
func (e *Engine) computeIntegrated() (float64, bool) {
	var cnt uint64
	var pw float64
	for i := 0; i < nBins; i++ {
		cnt += e.intCount[i]
		pw += e.intPower[i]
	}
	if cnt == 0 || pw <= 0 {
		return LUFSFloor, false
	}

	ungated := powerToLoudness(pw / float64(cnt))
	threshold := ungated - 10

	var gcnt uint64
	var gpw float64
	for i := 0; i < nBins; i++ {
		if binLoudness(i) >= threshold {
			gcnt += e.intCount[i]
			gpw += e.intPower[i]
		}
	}
	if gcnt == 0 || gpw <= 0 {
		return LUFSFloor, false
	}
	return powerToLoudness(gpw / float64(gcnt)), true
}

// computeLRA returns the 10th-to-95th percentile spread of the short-term
// loudness distribution
func (e *Engine) computeLRA() float64 {
	var total uint64
	for i := 0; i < nBins; i++ {
		total += e.lraCount[i]
	}
	if total < 2 {
		return 0
	}

	p10 := percentileBin(e.lraCount[:], total, 0.10)
	p95 := percentileBin(e.lraCount[:], total, 0.95)
	lra := binLoudness(p95) - binLoudness(p10)
	if lra < 0 {
		return 0
	}
	return lra
}

func (e *Engine) computeCrest() float64 {
	var peak, sumSq float64
	var n int
	for _, c := range e.crestRing {
		if c.peak > peak {
			peak = c.peak
		}
		sumSq += c.sumSq
		n += c.n
	}
	if n == 0 || sumSq <= 0 || peak <= 0 {
		return 0
	}
	rms := math.Sqrt(sumSq / float64(n))
	return audio.LinearToDB(peak, DBFloor) - audio.LinearToDB(rms, DBFloor)
}

func (e *Engine) computeDynamicRange() float64 {
	tp := math.Max(e.tpL.max, e.tpR.max)
	if e.lifeN == 0 || e.lifeSumSq <= 0 || tp <= 0 {
		return 0
	}
	rms := math.Sqrt(e.lifeSumSq / float64(e.lifeN))
	return audio.LinearToDB(tp, DBFloor) - audio.LinearToDB(rms, DBFloor)
}

// loudnessOf converts a window power sum into LUFS, flooring silence
func loudnessOf(sum float64, n int) float64 {
	if n == 0 {
		return LUFSFloor
	}
	return powerToLoudness(sum / float64(n))
}

func powerToLoudness(mean float64) float64 {
	if mean <= 1e-15 {
		return LUFSFloor
	}
	l := -0.691 + 10*math.Log10(mean)
	if l < LUFSFloor {
		return LUFSFloor
	}
	return l
}

func binFor(lufs float64) int {
	i := int((lufs - LUFSFloor) / binWidth)
	if i < 0 {
		return 0
	}
	if i >= nBins {
		return nBins - 1
	}
	return i
}

func binLoudness(i int) float64 {
	return LUFSFloor + (float64(i)+0.5)*binWidth
}

func percentileBin(counts []uint64, total uint64, q float64) int {
	target := uint64(math.Ceil(q * float64(total)))
	if target == 0 {
		target = 1
	}
	var cum uint64
	for i, c := range counts {
		cum += c
		if cum >= target {
			return i
		}
	}
	return len(counts) - 1
}

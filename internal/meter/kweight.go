// ABOUTME: K-weighting pre-filter for BS.1770 loudness measurement
// ABOUTME: RBJ biquads: +4 dB high shelf at 1.68 kHz and RLB high-pass at 38 Hz
package meter

import "math"

// biquad is a second-order IIR section in transposed direct form II
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

func (f *biquad) reset() {
	f.z1 = 0
	f.z2 = 0
}

// newHighShelf builds an RBJ high-shelf biquad
func newHighShelf(sampleRate, f0, gainDB, q float64) biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * f0 / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cosW0 + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cosW0)
	b2 := a * ((a + 1) + (a-1)*cosW0 - beta)
	a0 := (a + 1) - (a-1)*cosW0 + beta
	a1 := 2 * ((a - 1) - (a+1)*cosW0)
	a2 := (a + 1) - (a-1)*cosW0 - beta

	return biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}
}

// newHighPass builds an RBJ high-pass biquad
func newHighPass(sampleRate, f0, q float64) biquad {
	w0 := 2 * math.Pi * f0 / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cosW0) / 2
	b1 := -(1 + cosW0)
	b2 := (1 + cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}
}

// kWeight is the two-stage K-weighting chain for one channel: the head
// modelling shelf followed by the RLB low-frequency roll-off.
type kWeight struct {
	shelf biquad
	rlb   biquad
}

// BS.1770 filter design parameters (shelf center, gain and Q; RLB corner)
const (
	kShelfFreq = 1681.974
	kShelfGain = 3.999843
	kShelfQ    = 0.7071752
	kRLBFreq   = 38.13547
	kRLBQ      = 0.5003271
)

func newKWeight(sampleRate float64) kWeight {
	return kWeight{
		shelf: newHighShelf(sampleRate, kShelfFreq, kShelfGain, kShelfQ),
		rlb:   newHighPass(sampleRate, kRLBFreq, kRLBQ),
	}
}

func (k *kWeight) process(x float64) float64 {
	return k.rlb.process(k.shelf.process(x))
}

func (k *kWeight) reset() {
	k.shelf.reset()
	k.rlb.reset()
}

// ABOUTME: Tests for the metering engine and mastering profile checks
// ABOUTME: Covers peak/RMS accuracy, gating validity, floors, and clip flags
package meter

import (
	"math"
	"sync"
	"testing"
)

const testRate = 48000

func sineBlock(freq, amp float64, n int, phase float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/testRate+phase)
	}
	return out
}

func feedSine(e *Engine, freq, amp float64, seconds float64) {
	block := 1024
	total := int(seconds * testRate)
	for off := 0; off < total; off += block {
		n := block
		if off+n > total {
			n = total - off
		}
		s := make([]float64, n)
		for i := range s {
			s[i] = amp * math.Sin(2*math.Pi*freq*float64(off+i)/testRate)
		}
		e.Ingest(s, s)
	}
}

func TestFullScaleSinePeakAndRMS(t *testing.T) {
	e := New(testRate)
	// Phase pi/2 so the first sample sits exactly at +1.0
	s := sineBlock(997, 1.0, 4800, math.Pi/2)
	e.Ingest(s, s)

	snap := e.Snapshot()
	if math.Abs(snap.PeakDB[0]) > 0.1 {
		t.Errorf("peak = %.2f dBFS, want ~0", snap.PeakDB[0])
	}
	if math.Abs(snap.RMSDB[0]-(-3.01)) > 0.5 {
		t.Errorf("RMS = %.2f dBFS, want ~-3", snap.RMSDB[0])
	}
	if !snap.Clipped[0] || !snap.Clipped[1] {
		t.Error("full-scale sine should set clip flags")
	}
}

func TestSilenceReportsFloors(t *testing.T) {
	e := New(testRate)
	z := make([]float64, 4800)
	e.Ingest(z, z)

	snap := e.Snapshot()
	if snap.PeakDB[0] != DBFloor || snap.PeakDB[1] != DBFloor {
		t.Errorf("silent peak = %v, want floor %v", snap.PeakDB, DBFloor)
	}
	if snap.RMSDB[0] != DBFloor {
		t.Errorf("silent RMS = %.1f, want floor", snap.RMSDB[0])
	}
	if snap.Clipped[0] || snap.Clipped[1] {
		t.Error("silence must not clip")
	}
	if snap.PhaseCorrelation != 0 {
		t.Errorf("silent phase correlation = %v, want 0", snap.PhaseCorrelation)
	}
	if math.IsNaN(snap.LUFSMomentary) || math.IsNaN(snap.LoudnessRangeLU) {
		t.Error("silence produced NaN loudness")
	}
	if snap.LUFSMomentary != LUFSFloor {
		t.Errorf("silent momentary = %.1f, want %.1f", snap.LUFSMomentary, LUFSFloor)
	}
}

func TestTruePeakAtLeastSamplePeak(t *testing.T) {
	e := New(testRate)
	// Frequency near Nyquist/4 with odd phase so inter-sample peaks exceed
	// sample peaks
	s := sineBlock(11025, 0.9, 4800, 0.6)
	e.Ingest(s, s)

	snap := e.Snapshot()
	if snap.TruePeakDB < snap.PeakDB[0]-1e-9 {
		t.Errorf("true peak %.2f below sample peak %.2f", snap.TruePeakDB, snap.PeakDB[0])
	}
}

func TestIntegratedValidityGate(t *testing.T) {
	e := New(testRate)
	if e.Snapshot().LUFSIntegratedValid {
		t.Fatal("integrated valid before any audio")
	}

	// Under one momentary window: still no qualifying gating block
	feedSine(e, 997, 0.5, 0.2)
	if e.Snapshot().LUFSIntegratedValid {
		t.Error("integrated valid before a full gating block")
	}

	feedSine(e, 997, 0.5, 1.0)
	snap := e.Snapshot()
	if !snap.LUFSIntegratedValid {
		t.Fatal("integrated still invalid after 1.2s of signal")
	}
	// Stereo 997 Hz sine at 0.5 has K-weighted power ~0.25: about -6.7 LUFS
	if math.Abs(snap.LUFSIntegrated-(-6.7)) > 1.5 {
		t.Errorf("integrated = %.2f LUFS, want ~-6.7", snap.LUFSIntegrated)
	}
}

func TestMomentaryLoudnessOfKnownSine(t *testing.T) {
	e := New(testRate)
	feedSine(e, 997, 1.0, 1.0)

	// Full-scale stereo sine: summed power ~1.0, loudness ~-0.69 LUFS
	snap := e.Snapshot()
	if math.Abs(snap.LUFSMomentary-(-0.69)) > 1.5 {
		t.Errorf("momentary = %.2f LUFS, want ~-0.69", snap.LUFSMomentary)
	}
}

func TestPhaseCorrelation(t *testing.T) {
	e := New(testRate)
	l := sineBlock(440, 0.8, 4800, 0)
	e.Ingest(l, l)
	if c := e.Snapshot().PhaseCorrelation; c < 0.99 {
		t.Errorf("in-phase correlation = %.3f, want ~1", c)
	}

	r := make([]float64, len(l))
	for i := range r {
		r[i] = -l[i]
	}
	e.Ingest(l, r)
	if c := e.Snapshot().PhaseCorrelation; c > -0.99 {
		t.Errorf("anti-phase correlation = %.3f, want ~-1", c)
	}
}

func TestClipStickyAndReset(t *testing.T) {
	e := New(testRate)
	hot := sineBlock(440, 1.0, 4800, math.Pi/2)
	e.Ingest(hot, hot)

	quiet := sineBlock(440, 0.1, 4800, 0)
	e.Ingest(quiet, quiet)
	if snap := e.Snapshot(); !snap.Clipped[0] || !snap.Clipped[1] {
		t.Error("clip flags must stay set until reset")
	}

	e.ResetClip()
	if snap := e.Snapshot(); snap.Clipped[0] || snap.Clipped[1] {
		t.Error("clip flags set after ResetClip")
	}
}

func TestResetClearsLoudnessState(t *testing.T) {
	e := New(testRate)
	feedSine(e, 997, 1.0, 1.0)
	e.Reset()

	snap := e.Snapshot()
	if snap.LUFSIntegratedValid {
		t.Error("integrated valid after reset")
	}
	if snap.LUFSMomentary != LUFSFloor {
		t.Errorf("momentary = %.1f after reset, want floor", snap.LUFSMomentary)
	}
	if snap.TruePeakDB != DBFloor {
		t.Errorf("true peak = %.1f after reset, want floor", snap.TruePeakDB)
	}
}

func TestLoudnessRangeWidensWithDynamics(t *testing.T) {
	e := New(testRate)
	feedSine(e, 997, 0.05, 6.0)
	feedSine(e, 997, 0.8, 6.0)

	snap := e.Snapshot()
	if snap.LoudnessRangeLU < 5 {
		t.Errorf("LRA = %.1f LU for a 24 dB level step, want wide range", snap.LoudnessRangeLU)
	}
}

func TestCheckExportLoudMixFailsStreaming(t *testing.T) {
	e := New(testRate)
	feedSine(e, 997, 1.0, 2.0)

	problems := CheckExport(e.Snapshot(), ProfileStreaming)
	if len(problems) == 0 {
		t.Fatal("full-scale program passed the streaming profile")
	}
}

func TestCheckExportQuietMixPassesStreaming(t *testing.T) {
	e := New(testRate)
	feedSine(e, 997, 0.1, 2.0)

	snap := e.Snapshot()
	if !snap.LUFSIntegratedValid {
		t.Fatal("integrated not yet valid")
	}
	if problems := CheckExport(snap, ProfileStreaming); len(problems) != 0 {
		t.Errorf("quiet program failed streaming check: %v", problems)
	}
}

func TestCheckExportInvalidIntegratedFails(t *testing.T) {
	e := New(testRate)
	if problems := CheckExport(e.Snapshot(), ProfileClub); len(problems) == 0 {
		t.Error("snapshot without valid integrated reading must fail export")
	}
}

func TestParseProfile(t *testing.T) {
	for _, name := range []string{"streaming", "club", "broadcast", "vinyl", "audiophile"} {
		p, err := ParseProfile(name)
		if err != nil {
			t.Errorf("ParseProfile(%q): %v", name, err)
		}
		if p.String() != name {
			t.Errorf("round trip %q -> %q", name, p.String())
		}
	}
	if _, err := ParseProfile("cassette"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestProfileTargets(t *testing.T) {
	cases := []struct {
		p    MasteringProfile
		lufs float64
		tp   float64
	}{
		{ProfileStreaming, -14, -1},
		{ProfileClub, -8, -0.5},
		{ProfileBroadcast, -24, -2},
		{ProfileVinyl, -12, -1},
		{ProfileAudiophile, -16, -1},
	}
	for _, c := range cases {
		got := c.p.Target()
		if got.IntegratedLUFS != c.lufs || got.TruePeakDB != c.tp {
			t.Errorf("%s target = %+v, want {%v %v}", c.p, got, c.lufs, c.tp)
		}
	}
}

func TestResetClipConcurrentWithIngest(t *testing.T) {
	e := New(testRate)

	// ResetClip is a control-surface call; it must be safe while the audio
	// path ingests. The race detector is the real assertion here.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			e.ResetClip()
			e.Snapshot()
		}
	}()

	block := make([]float64, 512)
	for i := range block {
		block[i] = math.Sin(2 * math.Pi * 997 * float64(i) / testRate)
	}
	for i := 0; i < 200; i++ {
		e.Ingest(block, block)
	}
	close(done)
	wg.Wait()

	snap := e.Snapshot()
	if math.IsNaN(snap.LUFSMomentary) || math.IsNaN(snap.TruePeakDB) {
		t.Error("snapshot not finite after concurrent resets")
	}
}

// ABOUTME: Loudness metering engine for the master path
// ABOUTME: BS.1770 momentary/short-term/integrated, true peak, LRA, phase, crest
// Package meter measures program loudness on the master path: sample peak
// and RMS per channel, BS.1770 momentary, short-term, and gated integrated
// loudness, oversampled true peak, loudness range, phase correlation, and
// crest factor.
//
// Ingest runs on the audio render path and owns all mutable state; readers
// take point-in-time values through Snapshot, which is a lock-free atomic
// load safe from any goroutine. Integrated loudness carries an explicit
// validity flag so callers never see NaN while gating has no qualifying
// blocks yet.
package meter

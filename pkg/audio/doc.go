// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, SourceBuffer and level conversion helpers
// Package audio provides fundamental audio types shared across the glasswing core.
//
// This package defines the types the transport, routing, scheduling and
// metering components exchange:
//   - Format: sample rate and channel count of decoded material
//   - SourceBuffer: de-interleaved stereo float64 audio a region plays from
//
// It also provides level conversions between linear amplitude and dB with an
// explicit floor, so silence never turns into -Inf on its way to a meter.
package audio

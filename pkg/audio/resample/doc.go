// ABOUTME: Sample rate conversion with linear interpolation
// ABOUTME: Whole-buffer conversion for file loads and chunked streaming for capture
// Package resample converts audio between sample rates with linear
// interpolation. Buffer handles whole source files at project load time;
// Stream handles continuous capture feeds where chunk boundaries must not
// produce discontinuities.
package resample

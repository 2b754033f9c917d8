// ABOUTME: Master clock owning playback position, play state, and loop window
// ABOUTME: Publishes consistent transport snapshots to registered observers
// Package transport is the master clock: the single source of truth for
// playback position, play state, and the loop window. Commands normalize
// invalid input by clamping instead of failing, the audio path advances
// position through atomics only, and observers receive consistent
// snapshots through an atomically published State.
package transport

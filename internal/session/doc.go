// ABOUTME: Composition root wiring clock, routing, scheduler, host, and meters
// ABOUTME: Drives the engine block by block with a command queue for mutations
// Package session is the composition root of the engine: one Session wires
// the master clock, routing matrix, region scheduler, rendering host, and
// metering engine together and drives them block by block.
//
// Control commands from other goroutines queue up and apply at block
// boundaries, so the audio path never takes a lock that a slower thread
// could hold.
package session

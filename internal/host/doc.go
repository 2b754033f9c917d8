// ABOUTME: Rendering host boundary: Graph interface, reference mixer, device sink
// ABOUTME: Mixes sounding regions through the fixed bus topology
// Package host is the audio rendering host boundary. The Graph interface
// is the wiring surface the core uses to request processing nodes and
// connect them; RenderHost is the in-process reference implementation that
// mixes sounding regions into the fixed bus topology with deterministic
// gain staging; Sink plays rendered master blocks on the system device.
//
// RenderHost implements the scheduler's Player interface, so the region
// scheduler can start and stop voices without knowing how they are mixed.
package host

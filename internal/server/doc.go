// ABOUTME: WebSocket control bridge serving remote transport and metering clients
// ABOUTME: Handles the hello handshake, state broadcast, and live capture ingest
// Package server is the WebSocket control bridge. Remote clients drive the
// transport, receive transport state and meter snapshots on a fixed
// cadence, and stream live capture audio that lands on the timeline as
// regions on auto-created tracks.
package server

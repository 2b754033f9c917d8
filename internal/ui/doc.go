// ABOUTME: Terminal transport console built on bubbletea
// ABOUTME: Renders play state, musical position, and live meter bars
// Package ui is the terminal transport console: play state, musical
// position, tempo, loop window, and live meters rendered at ~30 Hz.
package ui

// ABOUTME: Master clock owning the single authoritative transport state
// ABOUTME: Publishes position synchronously; audio path advances lock-free
package transport

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Loop is the transport loop window in seconds
type Loop struct {
	Enabled      bool
	StartSeconds float64
	EndSeconds   float64
}

// State is an immutable snapshot of the transport. Subscribers receive whole
// snapshots; a half-applied transport change is never observable.
type State struct {
	Playing         bool
	Recording       bool
	PositionSeconds float64
	PositionSamples uint64
	Loop            Loop

	// SeekGeneration increments on every discontinuous reposition (seek,
	// stop, play-from, loop-window rewrap). Loop wraps during playback do
	// NOT increment it; they are part of continuous playback.
	SeekGeneration uint64
}

// PlayState is the derived user-facing transport mode
type PlayState int

const (
	Stopped PlayState = iota
	Playing
	Paused
	Recording
)

// String returns the play state name
func (p PlayState) String() string {
	switch p {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Recording:
		return "recording"
	}
	return "stopped"
}

// PlayState derives the transport mode from the snapshot
func (s State) PlayState() PlayState {
	switch {
	case s.Recording:
		return Recording
	case s.Playing:
		return Playing
	case s.PositionSamples > 0:
		return Paused
	}
	return Stopped
}

// Subscriber receives transport snapshots. Delivery is synchronous within
// the publishing call and at most once per publish. Callbacks run on
// whichever goroutine issued the transport command, so a subscriber that
// touches shared state must synchronize it; components living on the audio
// path poll Snapshot at block boundaries instead of subscribing.
type Subscriber func(State)

type subEntry struct {
	token string
	fn    Subscriber
}

// loopSamples is the loop window in sample units, swapped in atomically
type loopSamples struct {
	enabled bool
	start   uint64
	end     uint64
}

// Clock is the single source of truth for transport state. Exactly one Clock
// exists per session; it is created by the session and passed explicitly to
// every component that needs time, never reached through a package global.
//
// Concurrency: transport commands (Play, Seek, ...) are serialized by a
// mutex among themselves. The audio path calls Advance, which touches only
// atomics, so a command in flight can never stall the render callback.
type Clock struct {
	sampleRate int

	cmdMu sync.Mutex // serializes transport commands, never taken by Advance

	position  atomic.Uint64
	playing   atomic.Bool
	recording atomic.Bool
	loop      atomic.Pointer[loopSamples]
	seekGen   atomic.Uint64

	snapshot atomic.Pointer[State]

	subMu sync.Mutex // guards copy-on-write of the subscriber slice
	subs  atomic.Pointer[[]subEntry]
}

// New creates a clock at the given sample rate
func New(sampleRate int) *Clock {
	c := &Clock{sampleRate: sampleRate}
	c.loop.Store(&loopSamples{})
	empty := make([]subEntry, 0)
	c.subs.Store(&empty)
	c.publish()
	return c
}

// SampleRate returns the session sample rate
func (c *Clock) SampleRate() int {
	return c.sampleRate
}

// Play starts playback from the current position. A no-op while playing.
func (c *Clock) Play() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.playing.Store(true)
	c.publish()
}

// PlayFrom starts playback from the given time. While already playing it
// only jumps to the new position.
func (c *Clock) PlayFrom(seconds float64) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.position.Store(c.wrapIntoLoop(c.secondsToSamples(seconds)))
	c.seekGen.Add(1)
	c.playing.Store(true)
	c.publish()
}

// Record arms recording and starts the transport
func (c *Clock) Record() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.recording.Store(true)
	c.playing.Store(true)
	c.publish()
}

// Pause halts playback, keeping the current position
func (c *Clock) Pause() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.playing.Store(false)
	c.recording.Store(false)
	c.publish()
}

// Stop halts playback and returns the position to zero. The state change and
// generation bump are visible atomically, so the audio path silences
// everything sounding before it renders another sample.
func (c *Clock) Stop() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.playing.Store(false)
	c.recording.Store(false)
	c.position.Store(0)
	c.seekGen.Add(1)
	c.publish()
}

// Seek moves the position. Negative targets clamp to zero; with a loop
// enabled the target is rewrapped into the loop window.
func (c *Clock) Seek(seconds float64) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.position.Store(c.wrapIntoLoop(c.secondsToSamples(seconds)))
	c.seekGen.Add(1)
	c.publish()
}

// SetLoop configures the loop window. An inverted range is swapped rather
// than rejected; negative bounds clamp to zero. Enabling a loop rewraps the
// current position into the window.
func (c *Clock) SetLoop(enabled bool, startSeconds, endSeconds float64) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	if startSeconds > endSeconds {
		startSeconds, endSeconds = endSeconds, startSeconds
	}
	if startSeconds < 0 {
		startSeconds = 0
	}
	if endSeconds < 0 {
		endSeconds = 0
	}

	lp := &loopSamples{
		enabled: enabled,
		start:   c.secondsToSamples(startSeconds),
		end:     c.secondsToSamples(endSeconds),
	}
	c.loop.Store(lp)

	if enabled {
		pos := c.position.Load()
		wrapped := wrapSample(pos, lp)
		if wrapped != pos {
			c.position.Store(wrapped)
			c.seekGen.Add(1)
		}
	}
	c.publish()
}

// Advance moves the playhead by one audio block. Called only from the
// real-time render path; touches atomics only. Loop wrap here is continuous
// playback, not a seek.
func (c *Clock) Advance(frames int) {
	if !c.playing.Load() || frames <= 0 {
		return
	}

	pos := c.position.Load() + uint64(frames)
	lp := c.loop.Load()
	if lp.enabled && lp.end > lp.start && pos >= lp.end {
		pos = lp.start + (pos-lp.start)%(lp.end-lp.start)
	}
	c.position.Store(pos)
	c.publish()
}

// Snapshot returns the last published state
func (c *Clock) Snapshot() State {
	return *c.snapshot.Load()
}

// PositionSamples returns the authoritative sample position
func (c *Clock) PositionSamples() uint64 {
	return c.position.Load()
}

// PositionSeconds returns the position in seconds
func (c *Clock) PositionSeconds() float64 {
	return float64(c.position.Load()) / float64(c.sampleRate)
}

// Subscribe registers a subscriber and immediately delivers the current
// snapshot, so no update is lost between subscribing and the first publish.
// The returned token cancels delivery via Unsubscribe.
func (c *Clock) Subscribe(fn Subscriber) string {
	token := uuid.New().String()

	c.subMu.Lock()
	old := *c.subs.Load()
	next := make([]subEntry, len(old)+1)
	copy(next, old)
	next[len(old)] = subEntry{token: token, fn: fn}
	c.subs.Store(&next)
	c.subMu.Unlock()

	fn(c.Snapshot())
	return token
}

// Unsubscribe removes a subscriber. Safe to call from any context; no update
// is delivered after it returns. Unknown tokens are ignored.
func (c *Clock) Unsubscribe(token string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	old := *c.subs.Load()
	next := make([]subEntry, 0, len(old))
	for _, e := range old {
		if e.token != token {
			next = append(next, e)
		}
	}
	c.subs.Store(&next)
}

// Close tears the clock down, dropping all subscribers
func (c *Clock) Close() {
	c.cmdMu.Lock()
	c.playing.Store(false)
	c.recording.Store(false)
	c.cmdMu.Unlock()

	c.subMu.Lock()
	empty := make([]subEntry, 0)
	c.subs.Store(&empty)
	c.subMu.Unlock()
}

// publish builds a snapshot from the current state and delivers it to every
// subscriber before returning
func (c *Clock) publish() {
	lp := c.loop.Load()
	pos := c.position.Load()

	st := &State{
		Playing:         c.playing.Load(),
		Recording:       c.recording.Load(),
		PositionSeconds: float64(pos) / float64(c.sampleRate),
		PositionSamples: pos,
		Loop: Loop{
			Enabled:      lp.enabled,
			StartSeconds: float64(lp.start) / float64(c.sampleRate),
			EndSeconds:   float64(lp.end) / float64(c.sampleRate),
		},
		SeekGeneration: c.seekGen.Load(),
	}
	c.snapshot.Store(st)

	for _, e := range *c.subs.Load() {
		e.fn(*st)
	}
}

func (c *Clock) secondsToSamples(seconds float64) uint64 {
	if seconds < 0 {
		seconds = 0
	}
	return uint64(seconds * float64(c.sampleRate))
}

// wrapIntoLoop rewraps a target position into the loop window if one is
// enabled
func (c *Clock) wrapIntoLoop(pos uint64) uint64 {
	return wrapSample(pos, c.loop.Load())
}

func wrapSample(pos uint64, lp *loopSamples) uint64 {
	if !lp.enabled {
		return pos
	}
	if lp.end <= lp.start {
		return lp.start
	}
	length := lp.end - lp.start
	if pos < lp.start {
		return lp.start
	}
	if pos < lp.end {
		return pos
	}
	return lp.start + (pos-lp.start)%length
}

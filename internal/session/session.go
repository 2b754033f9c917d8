// ABOUTME: Session composes clock, routing, scheduler, meter, and host
// ABOUTME: Owns the block-rate render loop and the command queue
package session

import (
	"log"
	"sync/atomic"

	"github.com/glasswing-audio/glasswing/internal/host"
	"github.com/glasswing-audio/glasswing/internal/meter"
	"github.com/glasswing-audio/glasswing/internal/musictime"
	"github.com/glasswing-audio/glasswing/internal/routing"
	"github.com/glasswing-audio/glasswing/internal/schedule"
	"github.com/glasswing-audio/glasswing/internal/transport"
)

const (
	// DefaultBlockSize is the render block length in frames
	DefaultBlockSize = 512

	// commandQueueDepth bounds pending control commands between blocks
	commandQueueDepth = 256
)

type tempoState struct {
	bpm float64
	sig musictime.Signature
}

// Config holds session creation parameters
type Config struct {
	SampleRate int
	BlockSize  int
	BPM        float64
	Signature  musictime.Signature
}

// Session is the composition root of the transport core. Process drives one
// audio block: it drains queued control commands, advances the clock,
// evaluates the region scheduler, renders voices through the bus topology,
// and feeds the master tap to the metering engine.
//
// Control methods (AddTrack, AddRegion, tempo changes) may be called from
// any goroutine; they enqueue commands that apply at the next block
// boundary so the audio path never contends on a lock. Transport commands
// go straight to the clock's atomics and take effect at the same boundary:
// Process evaluates the scheduler against a fresh snapshot before
// rendering, so scheduler and host state stay single-goroutine.
type Session struct {
	sampleRate int
	blockSize  int

	clock  *transport.Clock
	matrix *routing.Matrix
	sched  *schedule.Scheduler
	meters *meter.Engine
	render *host.RenderHost

	cmds chan func()

	tempo atomic.Pointer[tempoState]

	closed atomic.Bool
}

// New creates a session wired end to end
func New(cfg Config) *Session {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.BPM == 0 {
		cfg.BPM = 120
	}
	if cfg.Signature.Numerator == 0 {
		cfg.Signature = musictime.NewSignature(4, 4)
	}

	s := &Session{
		sampleRate: cfg.SampleRate,
		blockSize:  cfg.BlockSize,
		clock:      transport.New(cfg.SampleRate),
		matrix:     routing.NewMatrix(),
		cmds:       make(chan func(), commandQueueDepth),
	}
	s.render = host.NewRenderHost(cfg.SampleRate, cfg.BlockSize, s.matrix)
	s.sched = schedule.New(cfg.SampleRate, s.render)
	s.meters = meter.New(cfg.SampleRate)
	s.tempo.Store(&tempoState{bpm: musictime.ClampBPM(cfg.BPM), sig: cfg.Signature})

	log.Printf("Session created: %dHz, block %d, %.1f BPM %d/%d",
		cfg.SampleRate, cfg.BlockSize, cfg.BPM, cfg.Signature.Numerator, cfg.Signature.Denominator)
	return s
}

// Clock exposes the master clock for transport commands and observers
func (s *Session) Clock() *transport.Clock {
	return s.clock
}

// Matrix exposes the read-only bus topology
func (s *Session) Matrix() *routing.Matrix {
	return s.matrix
}

// Meter exposes the metering engine for snapshot readers
func (s *Session) Meter() *meter.Engine {
	return s.meters
}

// Host exposes the rendering host's node graph surface
func (s *Session) Host() host.Graph {
	return s.render
}

// SampleRate returns the session sample rate
func (s *Session) SampleRate() int {
	return s.sampleRate
}

// BlockSize returns the render block length in frames
func (s *Session) BlockSize() int {
	return s.blockSize
}

// enqueue hands a command to the audio path. Blocks briefly if the queue
// is full rather than dropping control input.
func (s *Session) enqueue(fn func()) {
	if s.closed.Load() {
		return
	}
	s.cmds <- fn
}

// AddTrack registers a track; its bus is resolved from identity and role
func (s *Session) AddTrack(trackID, role string) {
	s.enqueue(func() {
		s.render.AddTrack(trackID, role)
	})
}

// RemoveTrack drops a track, its regions, and any sounding voices
func (s *Session) RemoveTrack(trackID string) {
	s.enqueue(func() {
		s.sched.RemoveTrackRegions(trackID)
		s.render.RemoveTrack(trackID)
	})
}

// AddRegion places a region on the timeline
func (s *Session) AddRegion(r *schedule.Region) {
	s.enqueue(func() {
		s.sched.AddRegion(r)
	})
}

// RemoveRegion removes a region, stopping it first if sounding
func (s *Session) RemoveRegion(regionID string) {
	s.enqueue(func() {
		s.sched.RemoveRegion(regionID)
	})
}

// SetTempo updates the session BPM, clamped to the valid range. Takes
// effect atomically; musical positions derived afterwards use the new grid.
func (s *Session) SetTempo(bpm float64) {
	cur := s.tempo.Load()
	s.tempo.Store(&tempoState{bpm: musictime.ClampBPM(bpm), sig: cur.sig})
}

// SetSignature updates the time signature, fields clamped to valid ranges
func (s *Session) SetSignature(numerator, denominator int) {
	if numerator < 0 {
		numerator = 0
	}
	if denominator < 0 {
		denominator = 0
	}
	cur := s.tempo.Load()
	s.tempo.Store(&tempoState{bpm: cur.bpm, sig: musictime.NewSignature(uint(numerator), uint(denominator))})
}

// Tempo returns the current BPM and signature
func (s *Session) Tempo() (float64, musictime.Signature) {
	t := s.tempo.Load()
	return t.bpm, t.sig
}

// MusicalPosition converts the clock position to bars, beats, and ticks
// under the current tempo
func (s *Session) MusicalPosition() musictime.Position {
	t := s.tempo.Load()
	return musictime.SecondsToPosition(s.clock.PositionSeconds(), t.bpm, t.sig)
}

// Process renders one audio block of n frames and returns the final stereo
// output. Runs on the audio path; the returned slices are valid until the
// next call.
func (s *Session) Process(n int) (outL, outR []float64) {
	if n > s.blockSize {
		n = s.blockSize
	}

	s.drainCommands()

	// The scheduler and host are touched only from this goroutine: transport
	// commands from other goroutines land in the clock's atomics, and this
	// evaluation picks them up (a seek-generation bump silences stale
	// voices) before a single sample of the block renders.
	s.sched.OnTransport(s.clock.Snapshot())

	masterL, masterR := s.render.Render(n)
	s.meters.Ingest(masterL, masterR)

	// Advancing publishes the block-end position, which becomes the next
	// block's start for the scheduler
	s.clock.Advance(n)

	return s.render.AirBlock(n)
}

func (s *Session) drainCommands() {
	for {
		select {
		case fn := <-s.cmds:
			fn()
		default:
			return
		}
	}
}

// SoundingCount reports how many regions are currently sounding
func (s *Session) SoundingCount() int {
	return s.sched.SoundingCount()
}

// RegionCount reports how many regions are placed on the timeline
func (s *Session) RegionCount() int {
	return s.sched.RegionCount()
}

// Close tears the session down. The clock stops publishing and further
// control commands are ignored.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.clock.Close()
	log.Printf("Session closed")
}

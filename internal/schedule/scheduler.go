// ABOUTME: Region playback scheduler driven by master clock updates
// ABOUTME: Full re-evaluation per tick; stop-before-start; forced stops on seek
package schedule

import (
	"github.com/glasswing-audio/glasswing/internal/transport"
)

// Player is the rendering host surface the scheduler commands. StartRegion
// begins a region at the given in-region sample offset; StopRegion silences
// it. Both are called from the audio path and must not block.
type Player interface {
	StartRegion(r *Region, offsetSamples uint64)
	StopRegion(regionID string)
}

// Scheduler decides which regions are sounding at the current clock
// position. Every evaluation re-derives the sounding set from scratch
// rather than diffing against the previous tick, so discontinuous jumps
// (seeks, loop rewraps, transport stop) need no special casing.
//
// All methods run on the audio path: the session calls OnTransport once per
// block, and region mutation arrives through the drained command queue, so
// nothing here needs a lock.
type Scheduler struct {
	sampleRate int
	player     Player

	regions  []*Region
	sounding map[string]bool

	lastSeekGen uint64
	lastPos     uint64
}

// New creates a scheduler commanding the given player
func New(sampleRate int, player Player) *Scheduler {
	return &Scheduler{
		sampleRate: sampleRate,
		player:     player,
		regions:    make([]*Region, 0, 64),
		sounding:   make(map[string]bool, 64),
	}
}

// AddRegion registers a region for scheduling. The sounding key is
// pre-inserted so evaluation on the hot path never grows the map.
func (s *Scheduler) AddRegion(r *Region) {
	s.regions = append(s.regions, r)
	s.sounding[r.ID] = false
}

// RemoveRegion drops a region, stopping it first if it is sounding
func (s *Scheduler) RemoveRegion(regionID string) {
	for i, r := range s.regions {
		if r.ID == regionID {
			if s.sounding[r.ID] {
				s.player.StopRegion(r.ID)
			}
			delete(s.sounding, r.ID)
			s.regions = append(s.regions[:i], s.regions[i+1:]...)
			return
		}
	}
}

// RemoveTrackRegions drops every region owned by a track, stopping any that
// are sounding. Used when a track is destroyed.
func (s *Scheduler) RemoveTrackRegions(trackID string) {
	kept := s.regions[:0]
	for _, r := range s.regions {
		if r.TrackID == trackID {
			if s.sounding[r.ID] {
				s.player.StopRegion(r.ID)
			}
			delete(s.sounding, r.ID)
			continue
		}
		kept = append(kept, r)
	}
	s.regions = kept
}

// OnTransport consumes a transport snapshot. The session calls it at the
// top of every audio block, so a transport command issued between blocks
// takes effect here before the next sample renders.
func (s *Scheduler) OnTransport(st transport.State) {
	// A reposition (seek, stop, play-from, loop rewrap) invalidates every
	// running voice: in-region offsets no longer line up with the playhead.
	if st.SeekGeneration != s.lastSeekGen {
		s.lastSeekGen = st.SeekGeneration
		s.stopAll()
	}

	if !st.Playing {
		s.stopAll()
		return
	}

	s.evaluate(st.PositionSamples)
}

// evaluate re-derives the sounding set from scratch at the given position.
// Stops run before starts so a handover between adjacent regions never
// double-sounds inside one evaluation.
func (s *Scheduler) evaluate(pos uint64) {
	// A backward move without a generation bump is a loop wrap. Voices read
	// their sources linearly, so a region spanning the seam is stopped here
	// and re-started below at the wrapped in-region offset.
	wrapped := pos < s.lastPos
	s.lastPos = pos

	for _, r := range s.regions {
		if s.sounding[r.ID] && (wrapped || !r.Contains(pos, s.sampleRate)) {
			s.player.StopRegion(r.ID)
			s.sounding[r.ID] = false
		}
	}

	for _, r := range s.regions {
		if !s.sounding[r.ID] && r.Contains(pos, s.sampleRate) {
			s.player.StartRegion(r, pos-r.StartSample(s.sampleRate))
			s.sounding[r.ID] = true
		}
	}
}

func (s *Scheduler) stopAll() {
	for _, r := range s.regions {
		if s.sounding[r.ID] {
			s.player.StopRegion(r.ID)
			s.sounding[r.ID] = false
		}
	}
}

// IsSounding reports whether a region is currently sounding
func (s *Scheduler) IsSounding(regionID string) bool {
	return s.sounding[regionID]
}

// SoundingCount returns the number of currently sounding regions
func (s *Scheduler) SoundingCount() int {
	n := 0
	for _, v := range s.sounding {
		if v {
			n++
		}
	}
	return n
}

// RegionCount returns the number of live regions
func (s *Scheduler) RegionCount() int {
	return len(s.regions)
}

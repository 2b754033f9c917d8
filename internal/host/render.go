// ABOUTME: Reference rendering host: voices, bus summing, gain staging
// ABOUTME: Implements the scheduler's player surface and the node graph
package host

import (
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/glasswing-audio/glasswing/internal/routing"
	"github.com/glasswing-audio/glasswing/internal/schedule"
)

// voice is one sounding region. The cursor counts samples consumed since
// the region's start, so source reads and fade envelopes stay aligned
// across seeks.
type voice struct {
	region *schedule.Region
	cursor uint64
	bus    routing.BusID
}

type node struct {
	kind   NodeKind
	params map[string]float64
	sends  map[NodeID]bool
}

// RenderHost is the in-process rendering host. It owns voices and the bus
// accumulators and folds the fixed bus topology down to a stereo master
// block each render call.
//
// All mutating methods are called from the audio path or from the session's
// command queue, which drains at block boundaries on the same goroutine, so
// no internal locking is needed. SetParam values hot-swap through atomics
// because the control bridge may adjust bus gain from another goroutine.
type RenderHost struct {
	sampleRate int
	matrix     *routing.Matrix

	tracks map[string]routing.BusID
	voices map[string]*voice

	busL [routing.NumBuses][]float64
	busR [routing.NumBuses][]float64

	// One host gain node per bus; SetParam("gain") scales that bus
	nodes    map[NodeID]*node
	busNodes [routing.NumBuses]NodeID
	busGain  [routing.NumBuses]atomic.Uint64
}

// NewRenderHost creates a host for the given sample rate and block size
func NewRenderHost(sampleRate, blockSize int, matrix *routing.Matrix) *RenderHost {
	h := &RenderHost{
		sampleRate: sampleRate,
		matrix:     matrix,
		tracks:     make(map[string]routing.BusID),
		voices:     make(map[string]*voice),
		nodes:      make(map[NodeID]*node),
	}
	for b := routing.BusID(0); b < routing.NumBuses; b++ {
		h.busL[b] = make([]float64, blockSize)
		h.busR[b] = make([]float64, blockSize)
		h.busGain[b].Store(math.Float64bits(1.0))

		id, _ := h.CreateNode(NodeGain)
		h.busNodes[b] = id
		h.nodes[id].params["gain"] = 1.0
	}
	// Mirror the fixed bus DAG in the node graph
	for b := routing.BusID(0); b < routing.NumBuses; b++ {
		for _, dst := range matrix.Bus(b).Sends {
			_ = h.Connect(h.busNodes[b], h.busNodes[dst])
		}
	}
	return h
}

// AddTrack registers a track and resolves its bus assignment
func (h *RenderHost) AddTrack(trackID, role string) routing.BusID {
	bus := routing.RouteTrack(trackID, role)
	h.tracks[trackID] = bus
	log.Printf("Track %s routed to %s bus", trackID, bus)
	return bus
}

// RemoveTrack drops a track and silences any of its sounding voices
func (h *RenderHost) RemoveTrack(trackID string) {
	delete(h.tracks, trackID)
	for id, v := range h.voices {
		if v.region.TrackID == trackID {
			delete(h.voices, id)
		}
	}
}

// TrackBus reports the bus a registered track sums into
func (h *RenderHost) TrackBus(trackID string) (routing.BusID, bool) {
	b, ok := h.tracks[trackID]
	return b, ok
}

// StartRegion begins a voice at the given in-region sample offset.
// Unregistered tracks fall back to the routing heuristics directly.
func (h *RenderHost) StartRegion(r *schedule.Region, offsetSamples uint64) {
	bus, ok := h.tracks[r.TrackID]
	if !ok {
		bus = routing.RouteTrack(r.TrackID, "")
	}
	h.voices[r.ID] = &voice{region: r, cursor: offsetSamples, bus: bus}
}

// StopRegion silences a voice immediately
func (h *RenderHost) StopRegion(regionID string) {
	delete(h.voices, regionID)
}

// VoiceCount reports how many regions are currently sounding
func (h *RenderHost) VoiceCount() int {
	return len(h.voices)
}

// Render mixes all voices through the bus topology into a stereo master
// block. len(outL) and len(outR) must not exceed the configured block size.
// The returned slices alias the master-tap accumulators and are valid until
// the next Render call.
func (h *RenderHost) Render(n int) (outL, outR []float64) {
	if n > len(h.busL[0]) {
		n = len(h.busL[0])
	}
	for b := routing.BusID(0); b < routing.NumBuses; b++ {
		zero(h.busL[b][:n])
		zero(h.busR[b][:n])
	}

	for _, v := range h.voices {
		h.mixVoice(v, n)
	}

	// Fold stems into StemMix, then down the master tier
	for _, b := range h.matrix.StemBuses() {
		h.fold(b, n)
	}
	h.fold(routing.BusStemMix, n)
	h.fold(routing.BusMasterTap, n)

	return h.busL[routing.BusMasterTap][:n], h.busR[routing.BusMasterTap][:n]
}

// AirBlock returns the final post-master block from the last Render
func (h *RenderHost) AirBlock(n int) (outL, outR []float64) {
	if n > len(h.busL[0]) {
		n = len(h.busL[0])
	}
	return h.busL[routing.BusAir][:n], h.busR[routing.BusAir][:n]
}

func (h *RenderHost) mixVoice(v *voice, n int) {
	src := v.region.Source
	if src == nil {
		v.cursor += uint64(n)
		return
	}
	l := h.busL[v.bus]
	r := h.busR[v.bus]
	for i := 0; i < n; i++ {
		idx := v.cursor + uint64(i)
		if idx >= uint64(len(src.Left)) {
			break
		}
		offSec := float64(idx) / float64(h.sampleRate)
		g := v.region.GainAtOffset(offSec)
		l[i] += src.Left[idx] * g
		if idx < uint64(len(src.Right)) {
			r[i] += src.Right[idx] * g
		}
	}
	v.cursor += uint64(n)
}

// fold sums a bus into its send destinations with gain staging and the
// bus node's live gain applied
func (h *RenderHost) fold(b routing.BusID, n int) {
	bus := h.matrix.Bus(b)
	g := bus.GainStaging * math.Float64frombits(h.busGain[b].Load())
	for _, dst := range bus.Sends {
		dl, dr := h.busL[dst], h.busR[dst]
		sl, sr := h.busL[b], h.busR[b]
		for i := 0; i < n; i++ {
			dl[i] += sl[i] * g
			dr[i] += sr[i] * g
		}
	}
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}

// CreateNode registers a processing node. The reference host renders gain
// nodes itself; the remaining kinds are topology placeholders for an
// external DSP backend.
func (h *RenderHost) CreateNode(kind NodeKind) (NodeID, error) {
	id := NodeID(uuid.New().String())
	h.nodes[id] = &node{
		kind:   kind,
		params: make(map[string]float64),
		sends:  make(map[NodeID]bool),
	}
	return id, nil
}

// DestroyNode removes a node and all its connections
func (h *RenderHost) DestroyNode(id NodeID) error {
	if _, ok := h.nodes[id]; !ok {
		return ErrNoSuchNode{ID: id}
	}
	delete(h.nodes, id)
	for _, n := range h.nodes {
		delete(n.sends, id)
	}
	return nil
}

// Connect wires one node's output into another's input
func (h *RenderHost) Connect(from, to NodeID) error {
	src, ok := h.nodes[from]
	if !ok {
		return ErrNoSuchNode{ID: from}
	}
	if _, ok := h.nodes[to]; !ok {
		return ErrNoSuchNode{ID: to}
	}
	src.sends[to] = true
	return nil
}

// Disconnect removes a wiring edge
func (h *RenderHost) Disconnect(from, to NodeID) error {
	src, ok := h.nodes[from]
	if !ok {
		return ErrNoSuchNode{ID: from}
	}
	if !src.sends[to] {
		return fmt.Errorf("host: %s not connected to %s", from, to)
	}
	delete(src.sends, to)
	return nil
}

// SetParam updates a node parameter. Gain on a bus node takes effect on
// the next render block.
func (h *RenderHost) SetParam(id NodeID, name string, value float64) error {
	n, ok := h.nodes[id]
	if !ok {
		return ErrNoSuchNode{ID: id}
	}
	n.params[name] = value
	if name == "gain" {
		for b := routing.BusID(0); b < routing.NumBuses; b++ {
			if h.busNodes[b] == id {
				h.busGain[b].Store(math.Float64bits(value))
			}
		}
	}
	return nil
}

// BusNode returns the host gain node backing a bus
func (h *RenderHost) BusNode(b routing.BusID) NodeID {
	if b < 0 || b >= routing.NumBuses {
		return ""
	}
	return h.busNodes[b]
}

// ABOUTME: Fixed summing-bus topology and the track-to-bus resolver
// ABOUTME: Routing is an ordered predicate table with a guaranteed fallback
package routing

import "strings"

// BusID identifies one of the fixed summing buses
type BusID int

const (
	BusTwoTrack BusID = iota
	BusVocals
	BusDrums
	BusBass
	BusMusic
	BusStemMix
	BusMasterTap
	BusAir

	// NumBuses is the size of the fixed topology
	NumBuses
)

// String returns the bus name
func (b BusID) String() string {
	switch b {
	case BusTwoTrack:
		return "two-track"
	case BusVocals:
		return "vocals"
	case BusDrums:
		return "drums"
	case BusBass:
		return "bass"
	case BusMusic:
		return "music"
	case BusStemMix:
		return "stem-mix"
	case BusMasterTap:
		return "master-tap"
	case BusAir:
		return "air"
	}
	return "unknown"
}

// Gain-staging calibration constants per stem bus. These are hand-tuned
// values carried over from the product's mix calibration, not derived.
const (
	GainTwoTrack  = 0.65
	GainVocals    = 1.15
	GainDrums     = 1.0
	GainBass      = 0.85
	GainMusic     = 0.9
	GainStemMix   = 1.0
	GainMasterTap = 1.0
	GainAir       = 1.0
)

// Bus is one summing point in the fixed topology
type Bus struct {
	ID          BusID
	GainStaging float64
	Sends       []BusID
}

// Matrix owns the fixed bus DAG. Buses are created once per session and are
// never added or removed afterwards, so reads need no synchronization.
type Matrix struct {
	buses [NumBuses]Bus
}

// NewMatrix builds the immutable topology: the five stem buses feed StemMix,
// StemMix feeds MasterTap, MasterTap feeds Air.
func NewMatrix() *Matrix {
	m := &Matrix{}

	stem := []BusID{BusStemMix}
	m.buses[BusTwoTrack] = Bus{ID: BusTwoTrack, GainStaging: GainTwoTrack, Sends: stem}
	m.buses[BusVocals] = Bus{ID: BusVocals, GainStaging: GainVocals, Sends: stem}
	m.buses[BusDrums] = Bus{ID: BusDrums, GainStaging: GainDrums, Sends: stem}
	m.buses[BusBass] = Bus{ID: BusBass, GainStaging: GainBass, Sends: stem}
	m.buses[BusMusic] = Bus{ID: BusMusic, GainStaging: GainMusic, Sends: stem}
	m.buses[BusStemMix] = Bus{ID: BusStemMix, GainStaging: GainStemMix, Sends: []BusID{BusMasterTap}}
	m.buses[BusMasterTap] = Bus{ID: BusMasterTap, GainStaging: GainMasterTap, Sends: []BusID{BusAir}}
	m.buses[BusAir] = Bus{ID: BusAir, GainStaging: GainAir, Sends: nil}

	return m
}

// Bus returns the bus with the given ID
func (m *Matrix) Bus(id BusID) Bus {
	if id < 0 || id >= NumBuses {
		return m.buses[BusStemMix]
	}
	return m.buses[id]
}

// StemBuses returns the five buses that sum into StemMix
func (m *Matrix) StemBuses() []BusID {
	return []BusID{BusTwoTrack, BusVocals, BusDrums, BusBass, BusMusic}
}

// routeRule pairs a predicate over (trackID, role) with its target bus.
// Rules are evaluated in order; the first match wins.
type routeRule struct {
	bus   BusID
	match func(id, role string) bool
}

var routeRules = []routeRule{
	{BusTwoTrack, func(id, role string) bool {
		return strings.Contains(id, "two-track") || strings.Contains(id, "twotrack") ||
			role == "two-track" || role == "twotrack"
	}},
	{BusVocals, func(id, role string) bool {
		return strings.Contains(id, "vocals") || strings.Contains(id, "hush-record") ||
			strings.Contains(role, "vocal")
	}},
	{BusDrums, func(id, role string) bool {
		return strings.Contains(id, "drums") || strings.Contains(role, "drum")
	}},
	{BusBass, func(id, role string) bool {
		return strings.Contains(id, "bass") || role == "bass"
	}},
	{BusMusic, func(id, role string) bool {
		return strings.Contains(id, "harmonic") || strings.Contains(id, "perc") ||
			strings.Contains(id, "sub") ||
			role == "harmonic" || role == "perc" || role == "sub"
	}},
}

// RouteTrack resolves a track to a bus from its identity and optional role.
// The role may be empty. Resolution is deterministic, case-insensitive, and
// total: every input lands on exactly one bus, with StemMix as the fallback.
func RouteTrack(trackID, role string) BusID {
	id := strings.ToLower(trackID)
	r := strings.ToLower(role)

	for _, rule := range routeRules {
		if rule.match(id, r) {
			return rule.bus
		}
	}
	return BusStemMix
}

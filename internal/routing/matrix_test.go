// ABOUTME: Tests for the routing resolver and bus topology
// ABOUTME: Covers precedence order, totality, and the fixed DAG shape
package routing

import "testing"

func TestRouteTrack(t *testing.T) {
	cases := []struct {
		trackID string
		role    string
		want    BusID
	}{
		// Two-track takes top precedence
		{"two-track-print", "", BusTwoTrack},
		{"TwoTrack", "", BusTwoTrack},
		{"track-1", "two-track", BusTwoTrack},
		{"track-1", "twotrack", BusTwoTrack},

		// Vocals: id substring, hush-record capture tracks, role containing vocal
		{"lead-vocals", "", BusVocals},
		{"hush-record-3", "", BusVocals},
		{"track-2", "backing-vocal", BusVocals},
		{"track-2", "vocal", BusVocals},

		// Drums
		{"track-stem-drums", "", BusDrums},
		{"track-9", "drum", BusDrums},
		{"track-9", "drum-overheads", BusDrums},

		// Bass: role must match exactly
		{"bass-di", "", BusBass},
		{"track-999", "bass", BusBass},

		// Music: harmonic/perc/sub by id substring or exact role
		{"harmonic-pad", "", BusMusic},
		{"perc-loop", "", BusMusic},
		{"sub-drop", "", BusMusic},
		{"track-7", "harmonic", BusMusic},
		{"track-7", "perc", BusMusic},
		{"track-7", "sub", BusMusic},

		// Fallback
		{"track-999", "standard", BusStemMix},
		{"track-999", "", BusStemMix},
		{"", "", BusStemMix},

		// Precedence: vocals beats drums when both match
		{"vocals-and-drums", "", BusVocals},
		// Two-track beats everything
		{"twotrack-drums", "vocal", BusTwoTrack},
		// Case insensitivity
		{"TRACK-STEM-DRUMS", "", BusDrums},
		{"Track-1", "BASS", BusBass},
	}

	for _, c := range cases {
		got := RouteTrack(c.trackID, c.role)
		if got != c.want {
			t.Errorf("RouteTrack(%q, %q) = %v, want %v", c.trackID, c.role, got, c.want)
		}
	}
}

func TestRouteTrackIsPure(t *testing.T) {
	inputs := []struct{ id, role string }{
		{"track-stem-drums", ""},
		{"track-999", "bass"},
		{"anything", "whatever"},
	}

	for _, in := range inputs {
		first := RouteTrack(in.id, in.role)
		second := RouteTrack(in.id, in.role)
		if first != second {
			t.Errorf("RouteTrack(%q, %q) not deterministic: %v then %v",
				in.id, in.role, first, second)
		}
	}
}

func TestRouteTrackTotality(t *testing.T) {
	// Every resolution must land on a stem bus or the StemMix fallback;
	// never on the downstream master buses.
	ids := []string{"", "a", "two-track", "vocals", "drums", "bass", "sub", "xyz-123"}
	roles := []string{"", "vocal", "drum", "bass", "perc", "standard", "weird"}

	for _, id := range ids {
		for _, role := range roles {
			bus := RouteTrack(id, role)
			if bus < BusTwoTrack || bus > BusStemMix {
				t.Errorf("RouteTrack(%q, %q) resolved off the input tier: %v", id, role, bus)
			}
		}
	}
}

func TestTopology(t *testing.T) {
	m := NewMatrix()

	// The five stem buses each send only to StemMix
	for _, id := range m.StemBuses() {
		bus := m.Bus(id)
		if len(bus.Sends) != 1 || bus.Sends[0] != BusStemMix {
			t.Errorf("bus %v should send to StemMix, got %v", id, bus.Sends)
		}
	}

	if sends := m.Bus(BusStemMix).Sends; len(sends) != 1 || sends[0] != BusMasterTap {
		t.Errorf("StemMix should send to MasterTap, got %v", sends)
	}
	if sends := m.Bus(BusMasterTap).Sends; len(sends) != 1 || sends[0] != BusAir {
		t.Errorf("MasterTap should send to Air, got %v", sends)
	}
	if sends := m.Bus(BusAir).Sends; len(sends) != 0 {
		t.Errorf("Air is the final output and sends nowhere, got %v", sends)
	}
}

func TestGainStaging(t *testing.T) {
	m := NewMatrix()

	want := map[BusID]float64{
		BusTwoTrack:  0.65,
		BusVocals:    1.15,
		BusDrums:     1.0,
		BusBass:      0.85,
		BusMusic:     0.9,
		BusStemMix:   1.0,
		BusMasterTap: 1.0,
		BusAir:       1.0,
	}

	for id, gain := range want {
		if got := m.Bus(id).GainStaging; got != gain {
			t.Errorf("bus %v gain staging = %f, want %f", id, got, gain)
		}
	}
}

func TestBusString(t *testing.T) {
	if BusDrums.String() != "drums" {
		t.Errorf("unexpected name %q", BusDrums.String())
	}
	if BusID(99).String() != "unknown" {
		t.Errorf("out of range bus should be unknown, got %q", BusID(99).String())
	}
}

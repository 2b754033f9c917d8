// ABOUTME: Mastering delivery profiles with loudness and true-peak targets
// ABOUTME: Checks meter snapshots against a profile for export readiness
package meter

import "fmt"

// MasteringProfile names a delivery target with its loudness ceiling
type MasteringProfile int

const (
	ProfileStreaming MasteringProfile = iota
	ProfileClub
	ProfileBroadcast
	ProfileVinyl
	ProfileAudiophile
)

func (p MasteringProfile) String() string {
	switch p {
	case ProfileStreaming:
		return "streaming"
	case ProfileClub:
		return "club"
	case ProfileBroadcast:
		return "broadcast"
	case ProfileVinyl:
		return "vinyl"
	case ProfileAudiophile:
		return "audiophile"
	default:
		return "unknown"
	}
}

// ParseProfile resolves a profile by name
func ParseProfile(name string) (MasteringProfile, error) {
	switch name {
	case "streaming":
		return ProfileStreaming, nil
	case "club":
		return ProfileClub, nil
	case "broadcast":
		return ProfileBroadcast, nil
	case "vinyl":
		return ProfileVinyl, nil
	case "audiophile":
		return ProfileAudiophile, nil
	default:
		return ProfileStreaming, fmt.Errorf("unknown mastering profile %q", name)
	}
}

// Target holds the delivery limits for a profile
type Target struct {
	IntegratedLUFS float64
	TruePeakDB     float64
}

var profileTargets = map[MasteringProfile]Target{
	ProfileStreaming:  {IntegratedLUFS: -14, TruePeakDB: -1},
	ProfileClub:       {IntegratedLUFS: -8, TruePeakDB: -0.5},
	ProfileBroadcast:  {IntegratedLUFS: -24, TruePeakDB: -2},
	ProfileVinyl:      {IntegratedLUFS: -12, TruePeakDB: -1},
	ProfileAudiophile: {IntegratedLUFS: -16, TruePeakDB: -1},
}

// Target returns the delivery limits for the profile
func (p MasteringProfile) Target() Target {
	if t, ok := profileTargets[p]; ok {
		return t
	}
	return profileTargets[ProfileStreaming]
}

// IntegratedTolerance is how far integrated loudness may sit from the
// profile target and still pass the readiness check
const IntegratedTolerance = 1.0

// Problem describes one way a snapshot misses its delivery target
type Problem struct {
	Field    string
	Measured float64
	Limit    float64
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %.1f dB exceeds limit %.1f dB", p.Field, p.Measured, p.Limit)
}

// CheckExport evaluates a meter snapshot against a delivery profile.
// An empty result means the program is within the profile's limits.
// A snapshot without a valid integrated reading always fails.
func CheckExport(s Snapshot, p MasteringProfile) []Problem {
	t := p.Target()
	var problems []Problem

	if !s.LUFSIntegratedValid {
		problems = append(problems, Problem{
			Field:    "integrated loudness (not yet measurable)",
			Measured: LUFSFloor,
			Limit:    t.IntegratedLUFS,
		})
		return problems
	}

	if s.LUFSIntegrated > t.IntegratedLUFS+IntegratedTolerance {
		problems = append(problems, Problem{
			Field:    "integrated loudness",
			Measured: s.LUFSIntegrated,
			Limit:    t.IntegratedLUFS,
		})
	}
	if s.TruePeakDB > t.TruePeakDB {
		problems = append(problems, Problem{
			Field:    "true peak",
			Measured: s.TruePeakDB,
			Limit:    t.TruePeakDB,
		})
	}
	if s.Clipped[0] || s.Clipped[1] {
		problems = append(problems, Problem{
			Field:    "sample clipping",
			Measured: 0,
			Limit:    0,
		})
	}
	return problems
}

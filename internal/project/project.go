// ABOUTME: Project file model: YAML session descriptions on disk
// ABOUTME: Loading, validation, and normalization of tracks and regions
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/glasswing-audio/glasswing/internal/schedule"
)

// FadeSpec describes a region fade in the project file
type FadeSpec struct {
	Seconds float64 `yaml:"seconds"`
	Curve   string  `yaml:"curve"`
}

// RegionSpec places one audio file interval on a track's timeline
type RegionSpec struct {
	ID           string   `yaml:"id"`
	File         string   `yaml:"file"`
	StartSeconds float64  `yaml:"start_seconds"`
	EndSeconds   float64  `yaml:"end_seconds"`
	Gain         float64  `yaml:"gain,omitempty"`
	FadeIn       FadeSpec `yaml:"fade_in,omitempty"`
	FadeOut      FadeSpec `yaml:"fade_out,omitempty"`
}

// TrackSpec is one input track with its regions
type TrackSpec struct {
	ID      string       `yaml:"id"`
	Role    string       `yaml:"role,omitempty"`
	Regions []RegionSpec `yaml:"regions,omitempty"`
}

// LoopSpec is the persisted loop window
type LoopSpec struct {
	Enabled      bool    `yaml:"enabled"`
	StartSeconds float64 `yaml:"start_seconds"`
	EndSeconds   float64 `yaml:"end_seconds"`
}

// Signature is the persisted time signature
type Signature struct {
	Numerator   uint `yaml:"numerator"`
	Denominator uint `yaml:"denominator"`
}

// Project is a full session description on disk
type Project struct {
	Name       string      `yaml:"name"`
	SampleRate int         `yaml:"sample_rate,omitempty"`
	BPM        float64     `yaml:"bpm,omitempty"`
	Signature  Signature   `yaml:"signature,omitempty"`
	Loop       LoopSpec    `yaml:"loop,omitempty"`
	Tracks     []TrackSpec `yaml:"tracks,omitempty"`

	// Dir is the directory the project was loaded from; region file paths
	// resolve relative to it. Not persisted.
	Dir string `yaml:"-"`
}

// Load reads and validates a project file
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	p.Dir = filepath.Dir(path)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the project as YAML
func (p *Project) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Validate checks structural integrity: unique IDs, sane intervals, known
// fade curves. Tempo and signature values are clamped by the session, not
// rejected here.
func (p *Project) Validate() error {
	trackIDs := make(map[string]bool)
	regionIDs := make(map[string]bool)

	for ti, t := range p.Tracks {
		if t.ID == "" {
			return fmt.Errorf("track %d has no id", ti)
		}
		if trackIDs[t.ID] {
			return fmt.Errorf("duplicate track id %q", t.ID)
		}
		trackIDs[t.ID] = true

		for ri, r := range t.Regions {
			if r.ID == "" {
				return fmt.Errorf("track %q region %d has no id", t.ID, ri)
			}
			if regionIDs[r.ID] {
				return fmt.Errorf("duplicate region id %q", r.ID)
			}
			regionIDs[r.ID] = true

			if r.File == "" {
				return fmt.Errorf("region %q has no file", r.ID)
			}
			if r.EndSeconds <= r.StartSeconds {
				return fmt.Errorf("region %q has empty interval [%v, %v)", r.ID, r.StartSeconds, r.EndSeconds)
			}
			if r.Gain < 0 {
				return fmt.Errorf("region %q has negative gain", r.ID)
			}
			if _, err := ParseFadeCurve(r.FadeIn.Curve); err != nil {
				return fmt.Errorf("region %q fade_in: %w", r.ID, err)
			}
			if _, err := ParseFadeCurve(r.FadeOut.Curve); err != nil {
				return fmt.Errorf("region %q fade_out: %w", r.ID, err)
			}
		}
	}

	if p.Loop.Enabled && p.Loop.EndSeconds < p.Loop.StartSeconds {
		// Inverted windows are tolerated; the clock normalizes by swapping
		p.Loop.StartSeconds, p.Loop.EndSeconds = p.Loop.EndSeconds, p.Loop.StartSeconds
	}
	return nil
}

// ResolveFile returns a region file path resolved against the project dir
func (p *Project) ResolveFile(file string) string {
	if filepath.IsAbs(file) || p.Dir == "" {
		return file
	}
	return filepath.Join(p.Dir, file)
}

// ParseFadeCurve resolves a curve name from the project file. The empty
// string means linear.
func ParseFadeCurve(name string) (schedule.FadeCurve, error) {
	switch name {
	case "", "linear":
		return schedule.FadeLinear, nil
	case "exponential":
		return schedule.FadeExponential, nil
	case "logarithmic":
		return schedule.FadeLogarithmic, nil
	case "s-curve":
		return schedule.FadeSCurve, nil
	default:
		return schedule.FadeLinear, fmt.Errorf("unknown fade curve %q", name)
	}
}

// ABOUTME: Project loading: decode sources and populate the session
// ABOUTME: Decoding runs on the caller; placement applies at block bounds
package session

import (
	"fmt"
	"log"

	"github.com/glasswing-audio/glasswing/internal/project"
	"github.com/glasswing-audio/glasswing/internal/schedule"
	"github.com/glasswing-audio/glasswing/pkg/audio/decode"
	"github.com/glasswing-audio/glasswing/pkg/audio/resample"
)

// LoadProject applies a project file to the session: tempo, signature,
// loop window, tracks, and regions with their decoded sources. File I/O
// and decoding happen on the calling goroutine; the resulting placements
// queue up and land at the next block boundary.
func (s *Session) LoadProject(p *project.Project) error {
	s.SetTempo(p.BPM)
	if p.Signature.Numerator != 0 {
		s.SetSignature(int(p.Signature.Numerator), int(p.Signature.Denominator))
	}
	s.clock.SetLoop(p.Loop.Enabled, p.Loop.StartSeconds, p.Loop.EndSeconds)

	for _, t := range p.Tracks {
		s.AddTrack(t.ID, t.Role)
		for _, r := range t.Regions {
			region, err := buildRegion(p, t.ID, r, s.sampleRate)
			if err != nil {
				return fmt.Errorf("track %q: %w", t.ID, err)
			}
			s.AddRegion(region)
		}
	}

	log.Printf("Project %q loaded: %d tracks", p.Name, len(p.Tracks))
	return nil
}

func buildRegion(p *project.Project, trackID string, spec project.RegionSpec, sampleRate int) (*schedule.Region, error) {
	src, err := decode.LoadFile(p.ResolveFile(spec.File))
	if err != nil {
		return nil, fmt.Errorf("region %q: %w", spec.ID, err)
	}
	src = resample.Buffer(src, sampleRate)

	fadeIn, err := project.ParseFadeCurve(spec.FadeIn.Curve)
	if err != nil {
		return nil, fmt.Errorf("region %q: %w", spec.ID, err)
	}
	fadeOut, err := project.ParseFadeCurve(spec.FadeOut.Curve)
	if err != nil {
		return nil, fmt.Errorf("region %q: %w", spec.ID, err)
	}

	return &schedule.Region{
		ID:           spec.ID,
		TrackID:      trackID,
		StartSeconds: spec.StartSeconds,
		EndSeconds:   spec.EndSeconds,
		Gain:         spec.Gain,
		FadeIn:       schedule.Fade{Seconds: spec.FadeIn.Seconds, Curve: fadeIn},
		FadeOut:      schedule.Fade{Seconds: spec.FadeOut.Seconds, Curve: fadeOut},
		Source:       src,
	}, nil
}

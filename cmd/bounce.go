// ABOUTME: Bounce command: offline-render a project to a WAV file
// ABOUTME: Runs the session faster than real time and encodes the output
package cmd

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/glasswing-audio/glasswing/internal/meter"
	"github.com/glasswing-audio/glasswing/internal/project"
	"github.com/glasswing-audio/glasswing/internal/session"
	"github.com/glasswing-audio/glasswing/pkg/audio"
)

var (
	argBounceOut     string
	argBounceRate    int
	argBounceProfile string

	bounceCmd = &cobra.Command{
		Use:   "bounce <project>",
		Short: "Render a project to a WAV file",
		Long: `Loads a project, renders it offline through the full bus topology, and
writes the master output as 16-bit stereo WAV. The render also reports the
program's loudness figures, optionally checked against a delivery profile.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBounce(args[0])
		},
	}
)

func init() {
	bounceCmd.Flags().StringVarP(&argBounceOut, "output", "o", "bounce.wav", "Output WAV path")
	bounceCmd.Flags().IntVar(&argBounceRate, "sample-rate", 48000, "Render sample rate")
	bounceCmd.Flags().StringVar(&argBounceProfile, "profile", "", "Check result against a delivery profile")
	rootCmd.AddCommand(bounceCmd)
}

func runBounce(projectPath string) error {
	p, err := project.Load(projectPath)
	if err != nil {
		return err
	}

	sess := session.New(session.Config{SampleRate: argBounceRate})
	defer sess.Close()

	// Bounce ignores the loop window; the whole timeline renders once
	loop := p.Loop
	p.Loop = project.LoopSpec{}
	if err := sess.LoadProject(p); err != nil {
		return err
	}
	p.Loop = loop

	endSeconds := projectEnd(p)
	if endSeconds == 0 {
		return fmt.Errorf("project has no regions to render")
	}

	f, err := os.Create(argBounceOut)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, argBounceRate, 16, 2, 1)
	block := sess.BlockSize()
	totalFrames := int(endSeconds * float64(argBounceRate))

	sess.Process(block) // drain placements before the transport starts
	sess.Clock().Play()

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: argBounceRate},
		SourceBitDepth: 16,
	}
	for rendered := 0; rendered < totalFrames; rendered += block {
		l, r := sess.Process(block)
		n := len(l)
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}

		data := make([]int, n*2)
		for i := 0; i < n; i++ {
			data[i*2] = int(audio.SampleToInt16(l[i]))
			data[i*2+1] = int(audio.SampleToInt16(r[i]))
		}
		buf.Data = data
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}

	snap := sess.Meter().Snapshot()
	fmt.Printf("Rendered %.1fs to %s\n", endSeconds, argBounceOut)
	if snap.LUFSIntegratedValid {
		fmt.Printf("  Integrated: %.1f LUFS, true peak %.1f dBTP\n", snap.LUFSIntegrated, snap.TruePeakDB)
	}

	if argBounceProfile == "" {
		return nil
	}
	profile, err := meter.ParseProfile(argBounceProfile)
	if err != nil {
		return err
	}
	problems := meter.CheckExport(snap, profile)
	if len(problems) == 0 {
		fmt.Printf("  %s: PASS\n", profile)
		return nil
	}
	for _, pr := range problems {
		fmt.Printf("  %s: FAIL: %s\n", profile, pr)
	}
	return fmt.Errorf("%s does not meet the %s profile", argBounceOut, profile)
}

func projectEnd(p *project.Project) float64 {
	var end float64
	for _, t := range p.Tracks {
		for _, r := range t.Regions {
			if r.EndSeconds > end {
				end = r.EndSeconds
			}
		}
	}
	return end
}

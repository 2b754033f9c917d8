// ABOUTME: Analyze command: offline loudness measurement of an audio file
// ABOUTME: Checks the result against a mastering delivery profile
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glasswing-audio/glasswing/internal/meter"
	"github.com/glasswing-audio/glasswing/pkg/audio/decode"
)

var (
	argProfile string

	analyzeCmd = &cobra.Command{
		Use:   "analyze <file>",
		Short: "Measure loudness of an audio file",
		Long: `Decodes an audio file, runs it through the metering engine, and prints
peak, loudness, true peak, and dynamics figures. With a profile the result
is checked against that delivery target and a failing file exits nonzero.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0])
		},
	}
)

func init() {
	analyzeCmd.Flags().StringVar(&argProfile, "profile", "", "Delivery profile: streaming, club, broadcast, vinyl, audiophile")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(path string) error {
	src, err := decode.LoadFile(path)
	if err != nil {
		return err
	}

	engine := meter.New(src.SampleRate)
	const block = 4096
	for off := 0; off < src.Frames(); off += block {
		end := off + block
		if end > src.Frames() {
			end = src.Frames()
		}
		engine.Ingest(src.Left[off:end], src.Right[off:end])
	}

	snap := engine.Snapshot()
	fmt.Printf("%s: %.1fs at %dHz\n", path, src.DurationSeconds(), src.SampleRate)
	fmt.Printf("  Peak:        %6.1f dBFS (L) %6.1f dBFS (R)\n", snap.PeakDB[0], snap.PeakDB[1])
	fmt.Printf("  True peak:   %6.1f dBTP\n", snap.TruePeakDB)
	if snap.LUFSIntegratedValid {
		fmt.Printf("  Integrated:  %6.1f LUFS\n", snap.LUFSIntegrated)
	} else {
		fmt.Printf("  Integrated:  not measurable (program too short)\n")
	}
	fmt.Printf("  Range:       %6.1f LU\n", snap.LoudnessRangeLU)
	fmt.Printf("  Phase:       %+6.2f\n", snap.PhaseCorrelation)
	fmt.Printf("  Crest:       %6.1f dB\n", snap.CrestFactorDB)
	fmt.Printf("  Dynamics:    %6.1f dB\n", snap.DynamicRangeDB)
	if snap.Clipped[0] || snap.Clipped[1] {
		fmt.Printf("  Clipping:    detected\n")
	}

	if argProfile == "" {
		return nil
	}

	profile, err := meter.ParseProfile(argProfile)
	if err != nil {
		return err
	}
	target := profile.Target()
	fmt.Printf("\nProfile %s (%.0f LUFS, %.1f dBTP):\n", profile, target.IntegratedLUFS, target.TruePeakDB)

	problems := meter.CheckExport(snap, profile)
	if len(problems) == 0 {
		fmt.Printf("  PASS\n")
		return nil
	}
	for _, p := range problems {
		fmt.Printf("  FAIL: %s\n", p)
	}
	return fmt.Errorf("%s does not meet the %s profile", path, profile)
}

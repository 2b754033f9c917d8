// ABOUTME: Root CLI command and shared flags
// ABOUTME: Child commands attach in their own files' init functions
package cmd

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/glasswing-audio/glasswing/internal/version"
)

var (
	argLogFile string
	argQuiet   bool

	rootCmd = &cobra.Command{
		Use:     "glasswing",
		Short:   "Multi-track transport, routing, and metering engine",
		Version: version.Version,
		Long: version.Product + ` is the transport core of a multi-track audio
production tool: a sample-accurate master clock, musical time conversion,
deterministic stem routing, region playback, and broadcast-grade metering.`,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&argLogFile, "log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&argQuiet, "quiet", "q", false, "Suppress log output on stderr")
}

func setupLogging() error {
	var writers []io.Writer
	if !argQuiet {
		writers = append(writers, os.Stderr)
	}
	if argLogFile != "" {
		f, err := os.OpenFile(argLogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}
	if len(writers) == 0 {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(io.MultiWriter(writers...))
	}
	return nil
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

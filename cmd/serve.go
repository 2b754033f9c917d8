// ABOUTME: Serve command: run a session with control bridge and console
// ABOUTME: Drives the render loop against the audio device or a wall clock
package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glasswing-audio/glasswing/internal/host"
	"github.com/glasswing-audio/glasswing/internal/musictime"
	"github.com/glasswing-audio/glasswing/internal/project"
	"github.com/glasswing-audio/glasswing/internal/server"
	"github.com/glasswing-audio/glasswing/internal/session"
	"github.com/glasswing-audio/glasswing/internal/ui"
)

var (
	argPort       int
	argName       string
	argProject    string
	argSampleRate int
	argBlockSize  int
	argBPM        float64
	argNoMDNS     bool
	argNoTUI      bool
	argNoAudio    bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run a session with the control bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
)

func init() {
	serveCmd.Flags().IntVar(&argPort, "port", 8940, "Control bridge port")
	serveCmd.Flags().StringVar(&argName, "name", "", "Session name (default: hostname)")
	serveCmd.Flags().StringVar(&argProject, "project", "", "Project file to load")
	serveCmd.Flags().IntVar(&argSampleRate, "sample-rate", 48000, "Engine sample rate")
	serveCmd.Flags().IntVar(&argBlockSize, "block-size", session.DefaultBlockSize, "Render block size in frames")
	serveCmd.Flags().Float64Var(&argBPM, "bpm", 120, "Initial tempo")
	serveCmd.Flags().BoolVar(&argNoMDNS, "no-mdns", false, "Disable mDNS advertisement")
	serveCmd.Flags().BoolVar(&argNoTUI, "no-tui", false, "Disable the transport console")
	serveCmd.Flags().BoolVar(&argNoAudio, "no-audio", false, "Render without the audio device")

	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	name := argName
	if name == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "glasswing"
		}
		name = hostname
	}

	sess := session.New(session.Config{
		SampleRate: argSampleRate,
		BlockSize:  argBlockSize,
		BPM:        argBPM,
		Signature:  musictime.DefaultSignature(),
	})
	defer sess.Close()

	if argProject != "" {
		p, err := project.Load(argProject)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		if err := sess.LoadProject(p); err != nil {
			return fmt.Errorf("load project: %w", err)
		}
	}

	var sink *host.Sink
	if !argNoAudio {
		sink = host.NewSink()
		if err := sink.Open(sess.SampleRate()); err != nil {
			return fmt.Errorf("open audio device: %w", err)
		}
		defer sink.Close()
	}

	srv := server.New(server.Config{
		Name:       name,
		Port:       argPort,
		EnableMDNS: !argNoMDNS,
	}, sess)

	stop := make(chan struct{})
	go renderLoop(sess, sink, stop)

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Control server error: %v", err)
		}
	}()
	defer srv.Stop()

	if !argNoTUI {
		controls := ui.Controls{Session: sess}
		if sink != nil {
			controls.Volume = sink
		}
		err := ui.Run(controls)
		close(stop)
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	close(stop)
	log.Printf("Shutting down")
	return nil
}

// renderLoop drives the session block by block. With a device the blocking
// sink write paces it; without one a wall-clock ticker does.
func renderLoop(sess *session.Session, sink *host.Sink, stop <-chan struct{}) {
	block := sess.BlockSize()

	var ticker *time.Ticker
	if sink == nil {
		interval := time.Duration(float64(block) / float64(sess.SampleRate()) * float64(time.Second))
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		l, r := sess.Process(block)
		if sink != nil {
			if err := sink.Write(l, r); err != nil {
				log.Printf("Audio write error: %v", err)
				return
			}
		} else {
			<-ticker.C
		}
	}
}

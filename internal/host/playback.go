// ABOUTME: Oto-based playback sink for rendered master blocks
// ABOUTME: Streams 16-bit PCM through a pipe into a persistent oto player
package host

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"

	"github.com/ebitengine/oto/v3"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

// Sink plays rendered stereo blocks on the system audio device. Write
// blocks until the device accepts the data, which paces the render loop.
type Sink struct {
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	ready      bool

	volume int
	muted  bool

	buf []byte
}

// NewSink creates an unopened playback sink
func NewSink() *Sink {
	return &Sink{volume: 100}
}

// Open initializes the audio device. oto allows one context per process,
// so a second Open with a different rate keeps the first context.
func (s *Sink) Open(sampleRate int) error {
	if s.otoCtx != nil {
		if s.sampleRate != sampleRate {
			log.Printf("Warning: sample rate change (%d -> %d) ignored, oto context cannot be reinitialized", s.sampleRate, sampleRate)
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	s.otoCtx = ctx
	s.sampleRate = sampleRate
	s.pipeReader, s.pipeWriter = io.Pipe()
	s.player = s.otoCtx.NewPlayer(s.pipeReader)
	s.player.Play()
	s.ready = true

	log.Printf("Playback sink open: %dHz stereo", sampleRate)
	return nil
}

// Write queues one stereo block. Channel slices of unequal length are
// truncated to the shorter one.
func (s *Sink) Write(left, right []float64) error {
	if !s.ready {
		return fmt.Errorf("playback sink not open")
	}
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	mult := s.multiplier()
	need := n * 4
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	for i := 0; i < n; i++ {
		l := audio.SampleToInt16(left[i] * mult)
		r := audio.SampleToInt16(right[i] * mult)
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(r))
	}

	if _, err := s.pipeWriter.Write(buf); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}
	return nil
}

// SetVolume sets playback volume, 0-100
func (s *Sink) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	s.volume = volume
}

// SetMuted sets the mute state
func (s *Sink) SetMuted(muted bool) {
	s.muted = muted
}

// Volume returns the current volume
func (s *Sink) Volume() int {
	return s.volume
}

func (s *Sink) multiplier() float64 {
	if s.muted {
		return 0
	}
	return float64(s.volume) / 100.0
}

// Close releases the device resources
func (s *Sink) Close() error {
	if s.pipeWriter != nil {
		s.pipeWriter.Close()
		s.pipeWriter = nil
	}
	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
	if s.pipeReader != nil {
		s.pipeReader.Close()
		s.pipeReader = nil
	}
	if s.otoCtx != nil {
		s.otoCtx.Suspend()
		s.ready = false
	}
	return nil
}

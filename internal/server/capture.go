// ABOUTME: Live capture streams: Opus/PCM packets become timeline regions
// ABOUTME: Captured tracks route to the vocal stem via their identity
package server

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/glasswing-audio/glasswing/internal/protocol"
	"github.com/glasswing-audio/glasswing/internal/schedule"
	"github.com/glasswing-audio/glasswing/pkg/audio"
	"github.com/glasswing-audio/glasswing/pkg/audio/decode"
	"github.com/glasswing-audio/glasswing/pkg/audio/resample"
)

// captureCounter numbers capture tracks process-wide
var captureCounter atomic.Uint64

type captureStream struct {
	trackID      string
	codec        string
	channels     int
	startSeconds float64

	opus      *decode.OpusStream
	resampler *resample.Stream

	left  []float64
	right []float64
}

// startCapture opens a capture stream for the client. The track name
// carries the hush-record prefix so routing sends it to the vocal stem.
func (s *Server) startCapture(client *Client, cmd protocol.CaptureStart) {
	if client.capture != nil {
		s.sendError(client, "capture already in progress")
		return
	}
	if cmd.SampleRate <= 0 || cmd.Channels < 1 || cmd.Channels > 2 {
		s.sendError(client, "invalid capture format")
		return
	}

	n := captureCounter.Add(1)
	cs := &captureStream{
		trackID:      fmt.Sprintf("hush-record-%d", n),
		codec:        cmd.Codec,
		channels:     cmd.Channels,
		startSeconds: s.sess.Clock().PositionSeconds(),
	}

	switch cmd.Codec {
	case "opus":
		dec, err := decode.NewOpusStream(cmd.SampleRate, cmd.Channels)
		if err != nil {
			s.sendError(client, fmt.Sprintf("opus init failed: %v", err))
			return
		}
		cs.opus = dec
	case "pcm16":
	default:
		s.sendError(client, fmt.Sprintf("unsupported capture codec %q", cmd.Codec))
		return
	}

	if cmd.SampleRate != s.sess.SampleRate() {
		cs.resampler = resample.NewStream(cmd.SampleRate, s.sess.SampleRate())
	}

	client.capture = cs
	s.sess.AddTrack(cs.trackID, "")
	s.send(client, protocol.TypeCaptureStarted, protocol.CaptureStarted{TrackID: cs.trackID})
	log.Printf("Capture started for %s: %s %dHz %dch -> %s",
		client.ID, cmd.Codec, cmd.SampleRate, cmd.Channels, cs.trackID)
}

// handleCaptureChunk decodes one binary audio frame into the stream buffer
func (s *Server) handleCaptureChunk(client *Client, data []byte) {
	cs := client.capture
	if cs == nil {
		s.sendError(client, "capture chunk without active capture")
		return
	}

	var left, right []float64
	var err error
	switch cs.codec {
	case "opus":
		left, right, err = cs.opus.DecodePacket(data)
	case "pcm16":
		left, right, err = decode.DecodePCM16(data, cs.channels)
	}
	if err != nil {
		log.Printf("Capture decode error from %s: %v", client.ID, err)
		return
	}

	if cs.resampler != nil {
		left, right = cs.resampler.Process(left, right)
	}
	cs.left = append(cs.left, left...)
	cs.right = append(cs.right, right...)
}

// finishCapture closes an active capture and places the recorded audio on
// the timeline at the position where the capture began
func (s *Server) finishCapture(client *Client) {
	cs := client.capture
	if cs == nil {
		return
	}
	client.capture = nil

	frames := len(cs.left)
	if frames == 0 {
		log.Printf("Capture on %s ended empty, no region placed", cs.trackID)
		return
	}

	rate := s.sess.SampleRate()
	src := &audio.SourceBuffer{Left: cs.left, Right: cs.right, SampleRate: rate}
	endSeconds := cs.startSeconds + float64(frames)/float64(rate)

	region := &schedule.Region{
		ID:           uuid.New().String(),
		TrackID:      cs.trackID,
		StartSeconds: cs.startSeconds,
		EndSeconds:   endSeconds,
		Source:       src,
	}
	s.sess.AddRegion(region)

	s.send(client, protocol.TypeCaptureStopped, protocol.CaptureStopped{
		TrackID:      cs.trackID,
		RegionID:     region.ID,
		StartSeconds: cs.startSeconds,
		EndSeconds:   endSeconds,
	})
	log.Printf("Capture finished: %s [%.2fs, %.2fs)", cs.trackID, cs.startSeconds, endSeconds)
}

// ABOUTME: Opus packet decoder for live capture streams
// ABOUTME: Converts network Opus packets into stereo sample pairs
package decode

import (
	"fmt"

	"gopkg.in/hraban/opus.v2"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

// maxOpusFrame is the largest Opus frame in samples per channel (120 ms at
// 48 kHz)
const maxOpusFrame = 5760

// OpusStream decodes a sequence of Opus packets from one capture source.
// Not safe for concurrent use; each stream owns one decoder.
type OpusStream struct {
	decoder  *opus.Decoder
	channels int
	pcm      []int16
}

// NewOpusStream creates a packet decoder for the given stream format
func NewOpusStream(sampleRate, channels int) (*OpusStream, error) {
	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}
	return &OpusStream{
		decoder:  dec,
		channels: channels,
		pcm:      make([]int16, maxOpusFrame*channels),
	}, nil
}

// DecodePacket decodes one Opus packet into stereo sample slices. Mono
// streams are duplicated to both channels.
func (s *OpusStream) DecodePacket(data []byte) (left, right []float64, err error) {
	n, err := s.decoder.Decode(data, s.pcm)
	if err != nil {
		return nil, nil, fmt.Errorf("opus decode failed: %w", err)
	}

	left = make([]float64, n)
	right = make([]float64, n)
	for i := 0; i < n; i++ {
		left[i] = audio.SampleFromInt16(s.pcm[i*s.channels])
		if s.channels > 1 {
			right[i] = audio.SampleFromInt16(s.pcm[i*s.channels+1])
		} else {
			right[i] = left[i]
		}
	}
	return left, right, nil
}

// ABOUTME: WAV file decoder
// ABOUTME: Reads PCM WAV data into a stereo source buffer
package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

// LoadWAV decodes a WAV stream into a source buffer. Mono files are
// duplicated to both channels; files with more than two channels keep the
// first two.
func LoadWAV(r io.ReadSeeker) (*audio.SourceBuffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV data: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels == 0 {
		return nil, fmt.Errorf("WAV file has no channel format")
	}

	channels := pcm.Format.NumChannels
	frames := len(pcm.Data) / channels
	buf := audio.NewSourceBuffer(frames, pcm.Format.SampleRate)

	// Normalize integer PCM to [-1, 1] by the source bit depth
	scale := 1.0 / float64(int64(1)<<(pcm.SourceBitDepth-1))
	if pcm.SourceBitDepth == 0 {
		scale = 1.0 / float64(int64(1)<<15)
	}

	for i := 0; i < frames; i++ {
		buf.Left[i] = float64(pcm.Data[i*channels]) * scale
		if channels > 1 {
			buf.Right[i] = float64(pcm.Data[i*channels+1]) * scale
		} else {
			buf.Right[i] = buf.Left[i]
		}
	}
	return buf, nil
}

// ABOUTME: FLAC file decoder
// ABOUTME: Reads FLAC frames into a stereo source buffer
package decode

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

// LoadFLAC decodes a FLAC stream into a source buffer, frame by frame.
// Mono files are duplicated to both channels.
func LoadFLAC(r io.Reader) (*audio.SourceBuffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC stream: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info.NChannels == 0 {
		return nil, fmt.Errorf("FLAC stream has no channels")
	}
	scale := 1.0 / float64(int64(1)<<(info.BitsPerSample-1))

	buf := audio.NewSourceBuffer(int(info.NSamples), int(info.SampleRate))
	pos := 0
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FLAC frame decode error: %w", err)
		}

		n := len(frame.Subframes[0].Samples)
		// Streams may carry more frames than the header promised
		if pos+n > len(buf.Left) {
			grow := pos + n - len(buf.Left)
			buf.Left = append(buf.Left, make([]float64, grow)...)
			buf.Right = append(buf.Right, make([]float64, grow)...)
		}

		for i := 0; i < n; i++ {
			buf.Left[pos+i] = float64(frame.Subframes[0].Samples[i]) * scale
			if info.NChannels > 1 {
				buf.Right[pos+i] = float64(frame.Subframes[1].Samples[i]) * scale
			} else {
				buf.Right[pos+i] = buf.Left[pos+i]
			}
		}
		pos += n
	}

	buf.Left = buf.Left[:pos]
	buf.Right = buf.Right[:pos]
	return buf, nil
}

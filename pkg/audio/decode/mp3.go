// ABOUTME: MP3 file decoder
// ABOUTME: Reads MP3 data into a stereo source buffer
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

// LoadMP3 decodes an MP3 stream into a source buffer. go-mp3 always
// produces 16-bit stereo at the file's sample rate.
func LoadMP3(r io.Reader) (*audio.SourceBuffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	// 2 channels x 2 bytes per sample
	frames := len(data) / 4
	buf := audio.NewSourceBuffer(frames, dec.SampleRate())
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(data[i*4:]))
		rr := int16(binary.LittleEndian.Uint16(data[i*4+2:]))
		buf.Left[i] = audio.SampleFromInt16(l)
		buf.Right[i] = audio.SampleFromInt16(rr)
	}
	return buf, nil
}

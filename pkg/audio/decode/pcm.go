// ABOUTME: Raw PCM16 conversion for live capture streams
// ABOUTME: Interleaved little-endian int16 bytes to stereo sample pairs
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

// DecodePCM16 converts interleaved little-endian 16-bit PCM bytes to stereo
// sample slices. Mono input is duplicated to both channels.
func DecodePCM16(data []byte, channels int) (left, right []float64, err error) {
	if channels < 1 || channels > 2 {
		return nil, nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	frameBytes := channels * 2
	if len(data)%frameBytes != 0 {
		return nil, nil, fmt.Errorf("PCM data length %d not a multiple of frame size %d", len(data), frameBytes)
	}

	frames := len(data) / frameBytes
	left = make([]float64, frames)
	right = make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(data[i*frameBytes:]))
		left[i] = audio.SampleFromInt16(l)
		if channels > 1 {
			r := int16(binary.LittleEndian.Uint16(data[i*frameBytes+2:]))
			right[i] = audio.SampleFromInt16(r)
		} else {
			right[i] = left[i]
		}
	}
	return left, right, nil
}

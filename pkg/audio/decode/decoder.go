// ABOUTME: File loading entry point, dispatching to codec decoders
// ABOUTME: Produces timeline source buffers from WAV, MP3, and FLAC files
package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glasswing-audio/glasswing/pkg/audio"
)

// LoadFile reads an audio file into a source buffer, chosen by extension.
// Supported: .wav, .mp3, .flac.
func LoadFile(path string) (*audio.SourceBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return LoadWAV(f)
	case ".mp3":
		return LoadMP3(f)
	case ".flac":
		return LoadFLAC(f)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

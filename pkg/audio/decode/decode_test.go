// ABOUTME: Tests for the audio file and packet decoders
// ABOUTME: WAV round trip via encoder fixture, error paths, PCM conversion
package decode

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWAVFixture(t *testing.T, samples []int, channels, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return path
}

func TestLoadFileWAVStereo(t *testing.T) {
	// Two frames: L=16384 R=-16384, L=8192 R=0
	path := writeWAVFixture(t, []int{16384, -16384, 8192, 0}, 2, 44100)

	buf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if buf.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", buf.SampleRate)
	}
	if buf.Frames() != 2 {
		t.Fatalf("frames = %d, want 2", buf.Frames())
	}
	if math.Abs(buf.Left[0]-0.5) > 1e-3 || math.Abs(buf.Right[0]+0.5) > 1e-3 {
		t.Errorf("frame 0 = (%v, %v), want (0.5, -0.5)", buf.Left[0], buf.Right[0])
	}
	if math.Abs(buf.Left[1]-0.25) > 1e-3 || buf.Right[1] != 0 {
		t.Errorf("frame 1 = (%v, %v), want (0.25, 0)", buf.Left[1], buf.Right[1])
	}
}

func TestLoadFileWAVMonoDuplicates(t *testing.T) {
	path := writeWAVFixture(t, []int{16384, -8192}, 1, 48000)

	buf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if buf.Frames() != 2 {
		t.Fatalf("frames = %d, want 2", buf.Frames())
	}
	for i := 0; i < buf.Frames(); i++ {
		if buf.Left[i] != buf.Right[i] {
			t.Errorf("frame %d channels differ: %v vs %v", i, buf.Left[i], buf.Right[i])
		}
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.ogg")
	if err := os.WriteFile(path, []byte("not audio"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/missing.wav"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadWAVRejectsGarbage(t *testing.T) {
	if _, err := LoadWAV(bytes.NewReader([]byte("RIFFgarbage"))); err == nil {
		t.Error("expected error for invalid WAV data")
	}
}

func TestLoadMP3RejectsGarbage(t *testing.T) {
	if _, err := LoadMP3(bytes.NewReader([]byte("definitely not an mp3 stream"))); err == nil {
		t.Error("expected error for invalid MP3 data")
	}
}

func TestLoadFLACRejectsGarbage(t *testing.T) {
	if _, err := LoadFLAC(bytes.NewReader([]byte("fLaCbroken"))); err == nil {
		t.Error("expected error for invalid FLAC data")
	}
}

func TestDecodePCM16Stereo(t *testing.T) {
	// One frame: L=0x4000 (0.5), R=0xC000 (-0.5)
	data := []byte{0x00, 0x40, 0x00, 0xC0}
	l, r, err := DecodePCM16(data, 2)
	if err != nil {
		t.Fatalf("DecodePCM16: %v", err)
	}
	if len(l) != 1 || len(r) != 1 {
		t.Fatalf("got %d/%d frames, want 1", len(l), len(r))
	}
	if math.Abs(l[0]-0.5) > 1e-3 || math.Abs(r[0]+0.5) > 1e-3 {
		t.Errorf("frame = (%v, %v), want (0.5, -0.5)", l[0], r[0])
	}
}

func TestDecodePCM16MonoDuplicates(t *testing.T) {
	data := []byte{0x00, 0x40}
	l, r, err := DecodePCM16(data, 1)
	if err != nil {
		t.Fatalf("DecodePCM16: %v", err)
	}
	if l[0] != r[0] {
		t.Errorf("mono channels differ: %v vs %v", l[0], r[0])
	}
}

func TestDecodePCM16RejectsOddLength(t *testing.T) {
	if _, _, err := DecodePCM16([]byte{0x00, 0x40, 0x00}, 2); err == nil {
		t.Error("expected error for truncated frame")
	}
	if _, _, err := DecodePCM16([]byte{0x00, 0x40}, 3); err == nil {
		t.Error("expected error for unsupported channel count")
	}
}

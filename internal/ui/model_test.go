// ABOUTME: Tests for the TUI model update and render logic
// ABOUTME: Drives Update with key and tick messages, checks rendered text
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glasswing-audio/glasswing/internal/session"
)

type fakeVolume struct {
	value int
}

func (f *fakeVolume) SetVolume(v int) { f.value = v }
func (f *fakeVolume) Volume() int     { return f.value }

func newTestModel(t *testing.T) (Model, *session.Session, *fakeVolume) {
	t.Helper()
	sess := session.New(session.Config{SampleRate: 48000, BlockSize: 256})
	t.Cleanup(sess.Close)
	vol := &fakeVolume{value: 100}
	return NewModel(Controls{Session: sess, Volume: vol}), sess, vol
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestSpaceTogglesPlayback(t *testing.T) {
	m, sess, _ := newTestModel(t)

	m = press(m, " ")
	if !sess.Clock().Snapshot().Playing {
		t.Error("space did not start playback")
	}
	m = press(m, " ")
	if sess.Clock().Snapshot().Playing {
		t.Error("space did not pause playback")
	}
}

func TestStopResetsPosition(t *testing.T) {
	m, sess, _ := newTestModel(t)

	sess.Clock().Seek(10)
	m = press(m, "s")
	if sess.Clock().PositionSeconds() != 0 {
		t.Error("stop did not reset position")
	}
}

func TestSeekKeys(t *testing.T) {
	m, sess, _ := newTestModel(t)

	m = press(m, "right")
	if got := sess.Clock().PositionSeconds(); got != seekStep {
		t.Errorf("position after right = %v, want %v", got, seekStep)
	}
	m = press(m, "left")
	if got := sess.Clock().PositionSeconds(); got != 0 {
		t.Errorf("position after left = %v, want 0", got)
	}

	// Seeking below zero clamps
	m = press(m, "left")
	if got := sess.Clock().PositionSeconds(); got != 0 {
		t.Errorf("negative seek = %v, want 0", got)
	}
}

func TestVolumeKeys(t *testing.T) {
	m, _, vol := newTestModel(t)

	m = press(m, "down")
	if vol.value != 95 {
		t.Errorf("volume = %d, want 95", vol.value)
	}
	for i := 0; i < 30; i++ {
		m = press(m, "up")
	}
	if vol.value != 100 {
		t.Errorf("volume = %d, want capped at 100", vol.value)
	}
}

func TestQuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewRendersState(t *testing.T) {
	m, sess, _ := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	sess.Clock().Play()
	next, _ = m.Update(TickMsg{})
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, "playing") {
		t.Errorf("view missing play state:\n%s", view)
	}
	if !strings.Contains(view, "BPM") {
		t.Errorf("view missing tempo field:\n%s", view)
	}
}

func TestViewBeforeSizeKnown(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.View() != "Loading..." {
		t.Error("expected loading placeholder before window size arrives")
	}
}

func TestRenderBarBounds(t *testing.T) {
	if got := renderBar(150, 100, 10); strings.Count(got, "█") != 10 {
		t.Errorf("overfull bar = %q", got)
	}
	if got := renderBar(-5, 100, 10); strings.Count(got, "█") != 0 {
		t.Errorf("negative bar = %q", got)
	}
}

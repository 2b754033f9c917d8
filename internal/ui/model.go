// ABOUTME: Bubbletea model for the transport and metering TUI
// ABOUTME: Polls session snapshots on a tick and renders meters as bars
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glasswing-audio/glasswing/internal/meter"
	"github.com/glasswing-audio/glasswing/internal/musictime"
	"github.com/glasswing-audio/glasswing/internal/session"
	"github.com/glasswing-audio/glasswing/internal/transport"
)

// refreshInterval paces snapshot polling
const refreshInterval = 33 * time.Millisecond

// seekStep is the arrow-key seek distance in seconds
const seekStep = 5.0

// TickMsg triggers a snapshot refresh
type TickMsg time.Time

// Controls are the live objects the TUI drives
type Controls struct {
	Session *session.Session
	Volume  VolumeSetter
}

// VolumeSetter is the playback volume surface the TUI adjusts
type VolumeSetter interface {
	SetVolume(volume int)
	Volume() int
}

// Model represents the TUI state
type Model struct {
	controls Controls

	transport transport.State
	playState transport.PlayState
	position  musictime.Position
	bpm       float64
	sig       musictime.Signature
	meters    meter.Snapshot

	volume int

	width  int
	height int
}

// NewModel creates a TUI model bound to the session
func NewModel(controls Controls) Model {
	m := Model{controls: controls, volume: 100}
	if controls.Volume != nil {
		m.volume = controls.Volume.Volume()
	}
	m.refresh()
	return m
}

// Init schedules the first refresh tick
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case TickMsg:
		m.refresh()
		return m, tick()
	}
	return m, nil
}

func (m *Model) refresh() {
	sess := m.controls.Session
	if sess == nil {
		return
	}
	m.transport = sess.Clock().Snapshot()
	m.playState = m.transport.PlayState()
	m.position = sess.MusicalPosition()
	m.bpm, m.sig = sess.Tempo()
	m.meters = sess.Meter().Snapshot()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sess := m.controls.Session

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if sess != nil {
			if m.transport.Playing {
				sess.Clock().Pause()
			} else {
				sess.Clock().Play()
			}
		}
	case "s":
		if sess != nil {
			sess.Clock().Stop()
		}
	case "r":
		if sess != nil {
			sess.Clock().Record()
		}
	case "left":
		if sess != nil {
			sess.Clock().Seek(m.transport.PositionSeconds - seekStep)
		}
	case "right":
		if sess != nil {
			sess.Clock().Seek(m.transport.PositionSeconds + seekStep)
		}
	case "c":
		if sess != nil {
			sess.Meter().ResetClip()
		}
	case "up":
		m.volume += 5
		if m.volume > 100 {
			m.volume = 100
		}
		if m.controls.Volume != nil {
			m.controls.Volume.SetVolume(m.volume)
		}
	case "down":
		m.volume -= 5
		if m.volume < 0 {
			m.volume = 0
		}
		if m.controls.Volume != nil {
			m.controls.Volume.SetVolume(m.volume)
		}
	}
	m.refresh()
	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderTransport()
	s += m.renderMeters()
	s += m.renderHelp()
	return s
}

func (m Model) renderHeader() string {
	return fmt.Sprintf(`┌─ Glasswing ──────────────────────────────────────────┐
│ State: %-45s │
├──────────────────────────────────────────────────────┤
`, m.playState.String())
}

func (m Model) renderTransport() string {
	loop := "off"
	if m.transport.Loop.Enabled {
		loop = fmt.Sprintf("[%.1fs → %.1fs]", m.transport.Loop.StartSeconds, m.transport.Loop.EndSeconds)
	}

	return fmt.Sprintf("│ Time:  %8.2fs   Bar %d Beat %d Tick %-3d%-12s │\n"+
		"│ Tempo: %5.1f BPM %d/%d   Loop: %-20s │\n"+
		"│ Volume: [%s] %3d%%%-26s │\n",
		m.transport.PositionSeconds, m.position.Bar, m.position.Beat, m.position.Tick, "",
		m.bpm, m.sig.Numerator, m.sig.Denominator, loop,
		renderBar(m.volume, 100, 10), m.volume, "")
}

func (m Model) renderMeters() string {
	clipL, clipR := " ", " "
	if m.meters.Clipped[0] {
		clipL = "!"
	}
	if m.meters.Clipped[1] {
		clipR = "!"
	}

	integrated := "—"
	if m.meters.LUFSIntegratedValid {
		integrated = fmt.Sprintf("%.1f LUFS", m.meters.LUFSIntegrated)
	}

	return fmt.Sprintf("├──────────────────────────────────────────────────────┤\n"+
		"│ L %s [%s] %6.1f dB%-16s │\n"+
		"│ R %s [%s] %6.1f dB%-16s │\n"+
		"│ M: %6.1f  S: %6.1f  I: %-10s LRA: %4.1f LU │\n"+
		"│ TP: %6.1f dBTP   Phase: %+5.2f   Crest: %4.1f dB  │\n",
		clipL, renderMeterBar(m.meters.PeakDB[0]), m.meters.PeakDB[0], "",
		clipR, renderMeterBar(m.meters.PeakDB[1]), m.meters.PeakDB[1], "",
		m.meters.LUFSMomentary, m.meters.LUFSShortTerm, integrated, m.meters.LoudnessRangeLU,
		m.meters.TruePeakDB, m.meters.PhaseCorrelation, m.meters.CrestFactorDB)
}

func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ space:Play/Pause s:Stop r:Record ←/→:Seek c:Clip q  │
└──────────────────────────────────────────────────────┘
`
}

// renderBar draws a proportional bar of the given width
func renderBar(value, max, width int) string {
	if max <= 0 {
		max = 1
	}
	filled := value * width / max
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// renderMeterBar maps a dB level onto a 20-cell bar from the meter floor
func renderMeterBar(db float64) string {
	const width = 20
	frac := (db - meter.DBFloor) / -meter.DBFloor
	filled := int(frac * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

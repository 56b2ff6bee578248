// ABOUTME: Bubbletea model for the sequencer TUI
// ABOUTME: Pattern grid, transport controls, and master volume
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/beatline/beatline-go/internal/config"
	"github.com/beatline/beatline-go/pkg/engine"
	"github.com/beatline/beatline-go/pkg/timeline"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	playingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stoppedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// tickMsg drives the position readout while playing.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the TUI state. The timeline is the shared object; every access
// brackets Lock/Unlock and holds the lock only for the read or edit itself.
type Model struct {
	tl   *timeline.Timeline
	eng  *engine.AudioEngine
	keys config.KeyboardSettings

	cursorRow int // pattern index within the segment under edit
	cursorCol int // step index
	segIndex  int // which segment the grid shows

	width  int
	height int
	status string
}

// NewModel creates a TUI over the shared timeline and engine.
func NewModel(tl *timeline.Timeline, eng *engine.AudioEngine, keys config.KeyboardSettings) Model {
	return Model{tl: tl, eng: eng, keys: keys}
}

// Init starts the refresh tick.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		return m, tick()
	}
	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case m.keys.PlayPause:
		m.togglePlayback()
	case m.keys.Stop:
		m.tl.Lock()
		m.tl.Stop()
		m.tl.Unlock()
		m.status = "stopped"
	case m.keys.ToggleStep:
		m.toggleStepUnderCursor()
	case "up", "k":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case "down", "j":
		m.cursorRow++
		m.clampCursor()
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
	case "right", "l":
		m.cursorCol++
		m.clampCursor()
	case "tab":
		m.segIndex++
		m.clampCursor()
	case "+", "=":
		m.eng.SetMasterVolume(m.eng.MasterVolume() + 0.1)
		m.status = fmt.Sprintf("volume %.1f", m.eng.MasterVolume())
	case "-":
		m.eng.SetMasterVolume(m.eng.MasterVolume() - 0.1)
		m.status = fmt.Sprintf("volume %.1f", m.eng.MasterVolume())
	}

	return m, nil
}

func (m *Model) togglePlayback() {
	m.tl.Lock()
	defer m.tl.Unlock()
	if m.tl.IsPlaying() {
		m.tl.Pause()
		m.status = "paused"
	} else {
		m.tl.Play()
		m.status = "playing"
	}
}

func (m *Model) toggleStepUnderCursor() {
	m.tl.Lock()
	defer m.tl.Unlock()
	segs := m.tl.Segments()
	if m.segIndex >= len(segs) {
		return
	}
	patterns := segs[m.segIndex].Patterns
	if m.cursorRow >= len(patterns) {
		return
	}
	patterns[m.cursorRow].ToggleStep(m.cursorCol)
}

// clampCursor keeps the cursor inside the current segment's grid.
func (m *Model) clampCursor() {
	m.tl.Lock()
	defer m.tl.Unlock()
	segs := m.tl.Segments()
	if len(segs) == 0 {
		m.segIndex, m.cursorRow, m.cursorCol = 0, 0, 0
		return
	}
	if m.segIndex >= len(segs) {
		m.segIndex = 0
	}
	patterns := segs[m.segIndex].Patterns
	if len(patterns) == 0 {
		m.cursorRow, m.cursorCol = 0, 0
		return
	}
	if m.cursorRow >= len(patterns) {
		m.cursorRow = len(patterns) - 1
	}
	if n := patterns[m.cursorRow].Len(); m.cursorCol >= n {
		m.cursorCol = n - 1
	}
}

// View renders the transport line, the pattern grid, and help.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("beatline"))
	b.WriteString("  ")
	b.WriteString(m.renderTransport())
	b.WriteString("\n\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space:play/pause  s:stop  enter:toggle  arrows:move  tab:segment  +/-:volume  q:quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTransport() string {
	m.tl.Lock()
	state := m.tl.State()
	pos := m.tl.Position()
	total := m.tl.TotalDuration()
	m.tl.Unlock()

	line := fmt.Sprintf("%s  %05.1fs / %05.1fs  vol %.1f",
		state, pos, total, m.eng.MasterVolume())
	if state == timeline.Playing {
		return playingStyle.Render(line)
	}
	return stoppedStyle.Render(line)
}

func (m Model) renderGrid() string {
	m.tl.Lock()
	defer m.tl.Unlock()

	segs := m.tl.Segments()
	if len(segs) == 0 {
		return inactiveStyle.Render("(empty timeline)")
	}
	idx := m.segIndex
	if idx >= len(segs) {
		idx = 0
	}
	seg := segs[idx]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("segment %d/%d  %s  %d loops  %s  %.0f BPM\n",
		idx+1, len(segs), seg.PatternID, seg.LoopCount, seg.TimeSignature.String(), seg.BPM))

	for row, p := range seg.Patterns {
		b.WriteString(fmt.Sprintf("%-12s", p.SampleName))
		for col, step := range p.Steps {
			cell := "·"
			style := inactiveStyle
			if step.Active {
				cell = "■"
				style = activeStyle
			}
			if row == m.cursorRow && col == m.cursorCol {
				style = cursorStyle
			}
			b.WriteString(style.Render(cell))
			if (col+1)%4 == 0 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

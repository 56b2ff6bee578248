// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the sequencer UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/beatline/beatline-go/internal/config"
	"github.com/beatline/beatline-go/pkg/engine"
	"github.com/beatline/beatline-go/pkg/timeline"
)

// Run starts the TUI and blocks until the user quits.
func Run(tl *timeline.Timeline, eng *engine.AudioEngine, keys config.KeyboardSettings) error {
	p := tea.NewProgram(NewModel(tl, eng, keys), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

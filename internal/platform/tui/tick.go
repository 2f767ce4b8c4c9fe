// Package tui provides the Bubble Tea integration for Sky Battle.
// It hosts level attempts: the fixed-rate scheduler, input mapping,
// rendering, menus and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// countdownStep is the delay between countdown labels.
const countdownStep = time.Second

// TickMsg is sent to trigger a simulation tick. Gen identifies the
// attempt that scheduled it so stale chains die after a restart.
type TickMsg struct {
	Time time.Time
	Gen  int
}

// CountdownMsg advances the start countdown of attempt Gen.
type CountdownMsg struct {
	Gen int
}

// tickCmd returns a Bubble Tea command that sends one tick after interval.
func tickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Gen: gen}
	})
}

func countdownCmd(gen int) tea.Cmd {
	return tea.Tick(countdownStep, func(time.Time) tea.Msg {
		return CountdownMsg{Gen: gen}
	})
}

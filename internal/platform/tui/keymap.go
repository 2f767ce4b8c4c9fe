package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/level"
	"github.com/vovakirdan/tui-skybattle/internal/overlay"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	key := msg.String()

	// Global quit keys
	switch key {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	}

	switch key {
	case "w", "up", "k":
		return core.ActionUp, false
	case "s", "down", "j":
		return core.ActionDown, false
	case "x":
		return core.ActionStop, false
	case " ", "f":
		return core.ActionFire, false
	case "e":
		return core.ActionShield, false
	case "p", "esc":
		return core.ActionPause, false
	case "backspace":
		return core.ActionExit, false
	case "enter":
		return core.ActionConfirm, false
	case "b":
		return core.ActionBack, false
	case "r":
		return core.ActionRestart, false
	}

	return core.ActionNone, false
}

// MapChoice translates a key pressed while a terminal overlay (Win,
// GameOver or Exit) is open to the user's answer. The pause key is not a
// choice; it is swallowed while these overlays are open.
func (km *KeyMapper) MapChoice(state overlay.State, msg tea.KeyMsg) (level.Choice, bool) {
	key := msg.String()

	switch state {
	case overlay.Win:
		switch key {
		case "enter", "n", " ":
			return level.ChoiceNext, true
		case "r":
			return level.ChoiceRestart, true
		case "b":
			return level.ChoiceMenu, true
		}
	case overlay.GameOver:
		switch key {
		case "enter", "r", " ":
			return level.ChoiceRestart, true
		case "b":
			return level.ChoiceMenu, true
		}
	case overlay.Exit:
		switch key {
		case "enter", "y":
			return level.ChoiceMenu, true
		case "r":
			return level.ChoiceRestart, true
		case "n", "backspace":
			return level.ChoiceResume, true
		}
	}
	return 0, false
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionTimes
	MenuActionSkin
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab", "t":
		return MenuActionTimes
	case "c":
		return MenuActionSkin
	}

	return MenuActionNone
}

package core

// Action is a discrete input event, abstracted from physical key presses.
// The platform maps keys to actions; the level controller consumes them.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow - start climbing
	ActionDown           // S, Down arrow - start descending
	ActionStop           // key release / X - stop vertical movement
	ActionFire           // Space - fire one projectile
	ActionShield         // E - raise the shield
	ActionPause          // P, Esc - toggle pause
	ActionExit           // Backspace - open the exit overlay
	ActionConfirm        // Enter - confirm overlay choice
	ActionBack           // B - back to menu from an overlay
	ActionRestart        // R - restart after game over
	ActionQuit           // Q, Ctrl+C - exit program
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionStop:
		return "Stop"
	case ActionFire:
		return "Fire"
	case ActionShield:
		return "Shield"
	case ActionPause:
		return "Pause"
	case ActionExit:
		return "Exit"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Gameplay reports whether the action drives the player's plane
// rather than an overlay.
func (a Action) Gameplay() bool {
	switch a {
	case ActionUp, ActionDown, ActionStop, ActionFire, ActionShield:
		return true
	}
	return false
}

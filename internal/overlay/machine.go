// Package overlay implements the modal overlay state machine of a level
// attempt. At most one overlay is active; the simulation advances and
// accepts gameplay input only while none is.
package overlay

// State is the active overlay.
type State int

const (
	None State = iota
	Pause
	Win
	GameOver
	Countdown
	Exit
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Pause:
		return "pause"
	case Win:
		return "win"
	case GameOver:
		return "game-over"
	case Countdown:
		return "countdown"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// CountdownSteps is the length of the start sequence: 3, 2, 1, start.
const CountdownSteps = 4

var countdownLabels = [CountdownSteps]string{"3", "2", "1", "GO!"}

// Option configures a Machine.
type Option func(*Machine)

// OnChange registers a listener called after every accepted transition.
func OnChange(fn func(from, to State)) Option {
	return func(m *Machine) {
		m.onChange = fn
	}
}

// OnStart registers the callback run when the countdown completes.
func OnStart(fn func()) Option {
	return func(m *Machine) {
		m.onStart = fn
	}
}

// Machine tracks the overlay state of one level attempt.
type Machine struct {
	state     State
	finished  bool
	begun     bool
	remaining int

	onChange func(from, to State)
	onStart  func()
}

// New returns a machine in state None.
func New(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the active overlay.
func (m *Machine) State() State { return m.state }

// Finished reports whether the attempt reached Win or GameOver.
func (m *Machine) Finished() bool { return m.finished }

// Advancing reports whether the simulation may tick.
func (m *Machine) Advancing() bool {
	return m.state == None && !m.finished
}

// AcceptsInput reports whether gameplay input (move, fire, shield) is
// delivered.
func (m *Machine) AcceptsInput() bool {
	return m.Advancing()
}

// Request moves to the given state if the transition is legal, and
// reports whether it happened. Rejection is expected and silent.
func (m *Machine) Request(to State) bool {
	switch to {
	case None:
		switch m.state {
		case Pause, Exit:
			return m.set(None)
		case Countdown:
			return m.remaining == 0 && m.set(None)
		}
		return false
	case Countdown:
		if m.begun {
			return false
		}
		if !m.enter(Countdown) {
			return false
		}
		m.begun = true
		m.remaining = CountdownSteps
		return true
	case Win, GameOver:
		if !m.enter(to) {
			return false
		}
		m.finished = true
		return true
	default:
		return m.enter(to)
	}
}

// BeginCountdown starts the start sequence. Only the first call succeeds.
func (m *Machine) BeginCountdown() bool {
	return m.Request(Countdown)
}

// StepCountdown advances the start sequence by one step. When the last
// step elapses the machine returns to None and the start callback runs.
func (m *Machine) StepCountdown() (remaining int, done bool) {
	if m.state != Countdown {
		return 0, false
	}
	m.remaining--
	if m.remaining > 0 {
		return m.remaining, false
	}
	m.Request(None)
	if m.onStart != nil {
		m.onStart()
	}
	return 0, true
}

// CountdownLabel returns the text of the current countdown step, or ""
// outside the countdown.
func (m *Machine) CountdownLabel() string {
	if m.state != Countdown || m.remaining <= 0 {
		return ""
	}
	return countdownLabels[CountdownSteps-m.remaining]
}

// TogglePause pauses a running attempt or resumes a paused one.
// In any other state the toggle is consumed and nothing changes.
func (m *Machine) TogglePause() bool {
	switch m.state {
	case None:
		return m.Request(Pause)
	case Pause:
		return m.Request(None)
	default:
		return false
	}
}

// OpenExit shows the exit confirmation.
func (m *Machine) OpenExit() bool { return m.Request(Exit) }

// DismissExit closes the exit confirmation.
func (m *Machine) DismissExit() bool {
	if m.state != Exit {
		return false
	}
	return m.Request(None)
}

// Win ends the attempt with a victory.
func (m *Machine) Win() bool { return m.Request(Win) }

// GameOver ends the attempt with a defeat.
func (m *Machine) GameOver() bool { return m.Request(GameOver) }

// enter opens overlay to from None. The countdown must come first.
func (m *Machine) enter(to State) bool {
	if m.state != None || m.finished {
		return false
	}
	if !m.begun && to != Countdown {
		return false
	}
	return m.set(to)
}

func (m *Machine) set(to State) bool {
	from := m.state
	m.state = to
	if m.onChange != nil {
		m.onChange(from, to)
	}
	return true
}

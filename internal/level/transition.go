package level

// TransitionKind tags a Transition.
type TransitionKind int

const (
	Advance TransitionKind = iota + 1
	ReturnToMenu
	Restart
)

// String returns a human-readable name for the kind.
func (k TransitionKind) String() string {
	switch k {
	case Advance:
		return "advance"
	case ReturnToMenu:
		return "menu"
	case Restart:
		return "restart"
	default:
		return "unknown"
	}
}

// Transition is the single navigation request emitted when an attempt
// completes. Level is the target for Advance and Restart.
type Transition struct {
	Kind  TransitionKind
	Level string
}

// Choice is the user's answer to a Win, GameOver or Exit overlay.
type Choice int

const (
	ChoiceNext Choice = iota
	ChoiceRestart
	ChoiceMenu
	ChoiceResume
)

// Result is the outcome of a finished attempt.
type Result struct {
	Level   string  `json:"level"`
	Won     bool    `json:"won"`
	Elapsed float64 `json:"elapsed"`
	Best    float64 `json:"best,omitempty"`
	HasBest bool    `json:"has_best"`
	NewBest bool    `json:"new_best"`
	Kills   int     `json:"kills"`
	Ticks   uint64  `json:"ticks"`
}

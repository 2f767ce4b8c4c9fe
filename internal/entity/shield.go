package entity

// DefaultShieldMax is the number of projectile hits a player shield absorbs.
const DefaultShieldMax = 5

// Shield absorbs projectile damage while active.
//
// A shield with Max > 0 collapses once it has absorbed Max damage.
// A shield with MaxFrames > 0 collapses after that many ticks.
type Shield struct {
	Active    bool
	Absorbed  int
	Max       int // damage absorbed before collapsing; 0 means unlimited
	Charges   int // activations left; negative means unlimited
	Frames    int // ticks spent active in the current activation
	MaxFrames int // 0 means no time limit
}

// NewPlayerShield returns an inactive absorbing shield with the given charges.
func NewPlayerShield(max, charges int) *Shield {
	if max <= 0 {
		max = DefaultShieldMax
	}
	return &Shield{Max: max, Charges: charges}
}

// NewTimedShield returns an inactive shield that lasts maxFrames ticks and
// can be raised any number of times.
func NewTimedShield(maxFrames int) *Shield {
	return &Shield{MaxFrames: maxFrames, Charges: -1}
}

// Activate raises the shield. Returns false when it is already up or
// no charges are left.
func (s *Shield) Activate() bool {
	if s.Active || s.Charges == 0 {
		return false
	}
	if s.Charges > 0 {
		s.Charges--
	}
	s.Active = true
	s.Absorbed = 0
	s.Frames = 0
	return true
}

// Absorb routes n damage into the shield. It returns true when the damage
// was absorbed and must not reach health.
func (s *Shield) Absorb(n int) bool {
	if !s.Active {
		return false
	}
	if s.Max > 0 {
		s.Absorbed += n
		if s.Absorbed >= s.Max {
			s.deactivate()
		}
	}
	return true
}

// Tick advances the activation timer of a timed shield.
func (s *Shield) Tick() {
	if !s.Active || s.MaxFrames == 0 {
		return
	}
	s.Frames++
	if s.Frames >= s.MaxFrames {
		s.deactivate()
	}
}

func (s *Shield) deactivate() {
	s.Active = false
	s.Absorbed = 0
	s.Frames = 0
}

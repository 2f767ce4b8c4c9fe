package entity

import "github.com/vovakirdan/tui-skybattle/internal/core"

// MoveFunc advances an entity by one tick.
type MoveFunc func(e *Entity)

// FireFunc returns a projectile fired by e this tick, or nil.
type FireFunc func(e *Entity) *Entity

// Entity is a plane or projectile in the arena.
//
// Position is the layout origin (X0, Y0) plus the accumulated translation
// (TX, TY). Penetration is measured on TX alone.
type Entity struct {
	ID      uint64
	Kind    string
	Faction Faction

	X0, Y0 float64
	TX, TY float64
	W, H   float64

	// VY is the vertical speed requested by input, used by steering.
	VY float64

	Health int
	// Damage is the payload dealt by a projectile on hit.
	Damage int
	// Kills counts enemies credited to this entity. Only the player's
	// counter is scored.
	Kills int

	Move   MoveFunc
	Fire   FireFunc
	Shield *Shield

	destroyed   bool
	destroyedBy Cause
	uncaused    bool
}

// Position returns the current top-left corner in arena coordinates.
func (e *Entity) Position() (x, y float64) {
	return e.X0 + e.TX, e.Y0 + e.TY
}

// Box returns the current bounding box.
func (e *Entity) Box() core.Box {
	x, y := e.Position()
	return core.NewBox(x, y, e.W, e.H)
}

// Destroyed reports whether the entity has been destroyed.
func (e *Entity) Destroyed() bool { return e.destroyed }

// DestroyedBy returns the destruction cause, CauseNone while alive.
func (e *Entity) DestroyedBy() Cause { return e.destroyedBy }

// Live reports whether the entity still takes part in the simulation.
func (e *Entity) Live() bool { return !e.destroyed }

// Uncaused reports whether the entity was destroyed without an explicit
// cause and fell back to CausePenetration.
func (e *Entity) Uncaused() bool { return e.uncaused }

// Shielded reports whether an active shield is up.
func (e *Entity) Shielded() bool {
	return e.Shield != nil && e.Shield.Active
}

// Destroy marks the entity destroyed. Only the first call has an effect.
// Returns true if this call destroyed the entity.
func (e *Entity) Destroy(cause Cause) bool {
	if e.destroyed {
		return false
	}
	if cause == CauseNone {
		cause = CausePenetration
		e.uncaused = true
	}
	e.destroyed = true
	e.destroyedBy = cause
	return true
}

// TakeDamage subtracts n from health, bypassing any shield, and destroys
// the entity with cause once health drops to zero or below.
// Returns true if this call destroyed the entity.
func (e *Entity) TakeDamage(n int, cause Cause) bool {
	if e.destroyed {
		return false
	}
	e.Health -= n
	if e.Health <= 0 {
		return e.Destroy(cause)
	}
	return false
}

// Hit applies projectile damage. An active shield absorbs it first.
// Returns absorbed when the shield took the damage, and killed when the
// entity was destroyed by this hit.
func (e *Entity) Hit(n int, cause Cause) (absorbed, killed bool) {
	if e.destroyed {
		return false, false
	}
	if e.Shield != nil && e.Shield.Absorb(n) {
		return true, false
	}
	return false, e.TakeDamage(n, cause)
}

// Update runs the move strategy and advances the shield timer.
func (e *Entity) Update() {
	if e.destroyed {
		return
	}
	if e.Move != nil {
		e.Move(e)
	}
	if e.Shield != nil {
		e.Shield.Tick()
	}
}

// TryFire runs the fire strategy. Returns nil when nothing was fired.
func (e *Entity) TryFire() *Entity {
	if e.destroyed || e.Fire == nil {
		return nil
	}
	return e.Fire(e)
}

// Payload returns the damage this entity deals when it hits something.
func (e *Entity) Payload() int {
	if e.Damage <= 0 {
		return 1
	}
	return e.Damage
}

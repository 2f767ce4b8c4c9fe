// Package entity defines the actors of the arena: planes and projectiles,
// their factions, and how they take damage and get destroyed.
package entity

import "fmt"

// Faction is the collision partition an entity belongs to.
type Faction int

const (
	Player Faction = iota
	Enemy
	UserProjectile
	EnemyProjectile
	AllyProjectile
	Ally
)

// String returns a human-readable name for the faction.
func (f Faction) String() string {
	switch f {
	case Player:
		return "player"
	case Enemy:
		return "enemy"
	case UserProjectile:
		return "user-projectile"
	case EnemyProjectile:
		return "enemy-projectile"
	case AllyProjectile:
		return "ally-projectile"
	case Ally:
		return "ally"
	default:
		return "unknown"
	}
}

// IsProjectile reports whether the faction holds projectiles.
func (f Faction) IsProjectile() bool {
	return f == UserProjectile || f == EnemyProjectile || f == AllyProjectile
}

// Friendly reports whether the faction fights on the player's side.
func (f Faction) Friendly() bool {
	return f == Player || f == Ally
}

// Shots returns the faction of projectiles fired by planes of this faction.
func (f Faction) Shots() Faction {
	switch f {
	case Player:
		return UserProjectile
	case Ally:
		return AllyProjectile
	default:
		return EnemyProjectile
	}
}

// Cause records why an entity was destroyed.
type Cause int

const (
	CauseNone Cause = iota
	CauseUserProjectile
	CauseCollisionWithUser
	CausePenetration
	// CauseOutOfBounds marks projectiles swept after leaving the arena.
	// They are never scored.
	CauseOutOfBounds
	// CauseImpact marks an unscored hit: a projectile spent on impact, or a
	// friendly plane shot down by enemy fire.
	CauseImpact
)

// String returns a human-readable name for the cause.
func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseUserProjectile:
		return "user-projectile"
	case CauseCollisionWithUser:
		return "collision-with-user"
	case CausePenetration:
		return "penetration"
	case CauseOutOfBounds:
		return "out-of-bounds"
	case CauseImpact:
		return "impact"
	default:
		return "unknown"
	}
}

// ParseFaction returns the faction with the given String name.
func ParseFaction(s string) (Faction, error) {
	for f := Player; f <= Ally; f++ {
		if f.String() == s {
			return f, nil
		}
	}
	return Player, fmt.Errorf("entity: unknown faction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Faction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Faction) UnmarshalText(b []byte) error {
	v, err := ParseFaction(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Package level runs one attempt at a level: it owns the registry, the
// overlay machine and the game clock, and advances them one tick at a time.
package level

import (
	"github.com/vovakirdan/tui-skybattle/internal/behavior"
)

// Goal selects the win predicate of a level.
type Goal string

const (
	// GoalKills is won once the player has KillTarget kills.
	GoalKills Goal = "kills"
	// GoalWaves is won once the last wave reaches its kill count.
	GoalWaves Goal = "waves"
	// GoalBoss is won once the final wave (typically a single boss) has
	// been fully spawned and destroyed.
	GoalBoss Goal = "boss"
)

// Wave is one phase of the spawn policy.
type Wave struct {
	Archetype        string  `yaml:"archetype"`
	Cap              int     `yaml:"cap"`               // live enemies allowed at once
	SpawnProbability float64 `yaml:"spawn_probability"` // per free slot per tick
	KillsToAdvance   int     `yaml:"kills_to_advance"`  // 0 keeps the wave forever
	Total            int     `yaml:"total"`             // spawns in this wave, 0 is unlimited
}

// AllySpec places a friendly wingman. X and Y are arena fractions.
type AllySpec struct {
	Archetype string  `yaml:"archetype"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
}

// Definition describes a level.
type Definition struct {
	ID            string                   `yaml:"id"`
	Name          string                   `yaml:"name"`
	Next          string                   `yaml:"next"`
	Background    string                   `yaml:"background"`
	PlayerHealth  int                      `yaml:"player_health"`
	ShieldCharges int                      `yaml:"shield_charges"`
	Goal          Goal                     `yaml:"goal"`
	KillTarget    int                      `yaml:"kill_target"`
	Waves         []Wave                   `yaml:"waves"`
	Allies        []AllySpec               `yaml:"allies"`
	Archetypes    map[string]behavior.Spec `yaml:"archetypes"`
}

// Title returns the display name, falling back to the ID.
func (d Definition) Title() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Archetype returns the tuning for kind, taken from the level first and
// the built-in table otherwise.
func (d Definition) Archetype(kind string) (behavior.Spec, bool) {
	if s, ok := d.Archetypes[kind]; ok {
		if s.Kind == "" {
			s.Kind = kind
		}
		return s, true
	}
	s, ok := behavior.Defaults()[kind]
	return s, ok
}

// Final reports whether the level is the last of the campaign.
func (d Definition) Final() bool {
	return d.Next == ""
}

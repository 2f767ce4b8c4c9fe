package config

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-skybattle/internal/behavior"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/level"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// Scaling holds the multipliers a preset applies to a level.
type Scaling struct {
	FireRate      float64 // enemy fire probability
	Spawn         float64 // wave spawn probability
	EnemyHealth   float64
	PlayerHealth  int // added to the level's player health
	ShieldCharges int // added to the level's shield charges
}

// ParseDifficulty parses a preset name. Empty selects normal.
func ParseDifficulty(s string) (DifficultyPreset, error) {
	switch DifficultyPreset(s) {
	case "", DifficultyNormal:
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyHard:
		return DifficultyPreset(s), nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", s)
	}
}

// ScalingForPreset returns the multipliers of a preset.
func ScalingForPreset(preset DifficultyPreset) Scaling {
	switch preset {
	case DifficultyEasy:
		return Scaling{FireRate: 0.5, Spawn: 0.75, EnemyHealth: 1, PlayerHealth: 2, ShieldCharges: 1}
	case DifficultyHard:
		return Scaling{FireRate: 1.75, Spawn: 1.5, EnemyHealth: 1.5, PlayerHealth: -2}
	default:
		return Scaling{FireRate: 1, Spawn: 1, EnemyHealth: 1}
	}
}

// ApplyDifficulty returns a copy of def tuned to the preset. Normal leaves
// the level untouched. The definition's maps and slices are not shared
// with the result.
func ApplyDifficulty(def level.Definition, preset DifficultyPreset) level.Definition {
	if preset == DifficultyNormal || preset == "" {
		return def
	}
	sc := ScalingForPreset(preset)

	out := def
	out.PlayerHealth = max(1, def.PlayerHealth+sc.PlayerHealth)
	out.ShieldCharges = def.ShieldCharges + sc.ShieldCharges

	out.Waves = make([]level.Wave, len(def.Waves))
	for i, w := range def.Waves {
		w.SpawnProbability = math.Min(1, w.SpawnProbability*sc.Spawn)
		out.Waves[i] = w
	}
	out.Allies = append([]level.AllySpec(nil), def.Allies...)

	// Scale every archetype the level can reference, including built-ins
	// it does not override.
	out.Archetypes = make(map[string]behavior.Spec)
	for k, s := range behavior.Defaults() {
		out.Archetypes[k] = s
	}
	for k, s := range def.Archetypes {
		out.Archetypes[k] = s
	}
	for k, s := range out.Archetypes {
		if s.Faction != entity.Enemy {
			continue
		}
		s.FireRate = math.Min(1, s.FireRate*sc.FireRate)
		s.Health = max(1, int(math.Round(float64(s.Health)*sc.EnemyHealth)))
		if s.Pattern != nil {
			p := *s.Pattern
			s.Pattern = &p
		}
		out.Archetypes[k] = s
	}
	return out
}

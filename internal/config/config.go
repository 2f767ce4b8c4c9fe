// Package config loads level definitions and archetype tuning from YAML,
// and application settings through viper.
package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/vovakirdan/tui-skybattle/internal/behavior"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/level"
)

// ErrInvalidLevel is returned for level definitions that cannot be played.
var ErrInvalidLevel = errors.New("invalid level")

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validate checks a single level definition. Archetypes are resolved
// against the level's own table and the built-in defaults.
func Validate(def level.Definition) error {
	if !idPattern.MatchString(def.ID) {
		return invalid(def.ID, "id must be lowercase letters, digits and dashes")
	}
	if def.PlayerHealth < 0 {
		return invalid(def.ID, "player_health must not be negative")
	}

	if p, ok := def.Archetype(behavior.KindPlayer); !ok || p.Faction != entity.Player {
		return invalid(def.ID, "player archetype must have the player faction")
	}
	for i, w := range def.Waves {
		s, ok := def.Archetype(w.Archetype)
		if !ok {
			return invalid(def.ID, fmt.Sprintf("wave %d: unknown archetype %q", i+1, w.Archetype))
		}
		if s.Faction != entity.Enemy {
			return invalid(def.ID, fmt.Sprintf("wave %d: archetype %q is not an enemy", i+1, w.Archetype))
		}
		if w.Cap <= 0 {
			return invalid(def.ID, fmt.Sprintf("wave %d: cap must be positive", i+1))
		}
		if w.SpawnProbability < 0 || w.SpawnProbability > 1 {
			return invalid(def.ID, fmt.Sprintf("wave %d: spawn_probability must be within [0, 1]", i+1))
		}
	}
	for i, a := range def.Allies {
		s, ok := def.Archetype(a.Archetype)
		if !ok {
			return invalid(def.ID, fmt.Sprintf("ally %d: unknown archetype %q", i+1, a.Archetype))
		}
		if s.Faction != entity.Ally {
			return invalid(def.ID, fmt.Sprintf("ally %d: archetype %q is not an ally", i+1, a.Archetype))
		}
		if a.X < 0 || a.X > 1 || a.Y < 0 || a.Y > 1 {
			return invalid(def.ID, fmt.Sprintf("ally %d: position must be arena fractions", i+1))
		}
	}

	switch def.Goal {
	case level.GoalKills:
		if def.KillTarget <= 0 {
			return invalid(def.ID, "kills goal needs a positive kill_target")
		}
	case level.GoalWaves:
		if len(def.Waves) == 0 || def.Waves[len(def.Waves)-1].KillsToAdvance <= 0 {
			return invalid(def.ID, "waves goal needs a last wave with kills_to_advance")
		}
	case level.GoalBoss:
		if len(def.Waves) == 0 || def.Waves[len(def.Waves)-1].Total <= 0 {
			return invalid(def.ID, "boss goal needs a last wave with a total")
		}
	default:
		return invalid(def.ID, fmt.Sprintf("unknown goal %q", def.Goal))
	}
	return nil
}

// ValidateCampaign checks every level and that each Next points at a
// level of the campaign.
func ValidateCampaign(defs []level.Definition) error {
	ids := make(map[string]bool, len(defs))
	for _, d := range defs {
		if err := Validate(d); err != nil {
			return err
		}
		if ids[d.ID] {
			return invalid(d.ID, "duplicate id")
		}
		ids[d.ID] = true
	}
	for _, d := range defs {
		if d.Next != "" && !ids[d.Next] {
			return invalid(d.ID, fmt.Sprintf("next level %q does not exist", d.Next))
		}
	}
	return nil
}

// MergeArchetypes returns def with the shared table merged under its own
// archetypes. Level entries replace shared ones of the same kind.
func MergeArchetypes(def level.Definition, shared map[string]behavior.Spec) level.Definition {
	merged := make(map[string]behavior.Spec, len(shared)+len(def.Archetypes))
	for k, v := range shared {
		merged[k] = v
	}
	for k, v := range def.Archetypes {
		merged[k] = v
	}
	for k, v := range merged {
		if v.Kind == "" {
			v.Kind = k
			merged[k] = v
		}
	}
	def.Archetypes = merged
	return def
}

func invalid(id, reason string) error {
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Errorf("%w %s: %s", ErrInvalidLevel, id, reason)
}

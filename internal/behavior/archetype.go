package behavior

import (
	"math/rand"

	"github.com/vovakirdan/tui-skybattle/internal/entity"
)

// Archetype kinds with built-in wiring.
const (
	KindPlayer  = "player"
	KindFighter = "fighter"
	KindHeavy   = "heavy"
	KindBoss    = "boss"
	KindAlly    = "ally"
)

// Spec is the tuning of one archetype. The player steers from input, a
// plane with a Pattern bobs vertically, any other plane drifts at Speed.
type Spec struct {
	Kind     string         `yaml:"kind"`
	Faction  entity.Faction `yaml:"faction"`
	W        float64        `yaml:"w"`
	H        float64        `yaml:"h"`
	Health   int            `yaml:"health"`
	Speed    float64        `yaml:"speed"` // horizontal drift per tick, negative is leftwards
	FireRate float64        `yaml:"fire_rate"`
	Shot     ShotSpec       `yaml:"shot"`

	// Pattern movement. Band values are fractions of the arena height.
	Pattern    *PatternConfig `yaml:"pattern"`
	BandTop    float64        `yaml:"band_top"`
	BandBottom float64        `yaml:"band_bottom"`

	ShieldProbability float64 `yaml:"shield_probability"`
	MaxShieldFrames   int     `yaml:"max_shield_frames"`

	// Player only.
	VerticalSpeed float64 `yaml:"vertical_speed"`
	ShieldMax     int     `yaml:"shield_max"`
	ShieldCharges int     `yaml:"-"`
}

// Env carries what strategies need from the level.
type Env struct {
	ArenaW, ArenaH float64
	RNG            *rand.Rand
}

// Build creates a fully wired entity of the given archetype with its
// top-left corner at (x, y).
func Build(spec Spec, x, y float64, env Env) *entity.Entity {
	e := &entity.Entity{
		Kind:    spec.Kind,
		Faction: spec.Faction,
		X0:      x,
		Y0:      y,
		W:       spec.W,
		H:       spec.H,
		Health:  spec.Health,
	}
	if e.W <= 0 {
		e.W = 1
	}
	if e.H <= 0 {
		e.H = 1
	}
	if e.Health <= 0 {
		e.Health = 1
	}

	spawn := Shot(spec.Shot)

	switch {
	case spec.Faction == entity.Player:
		e.Move = Steer(0, env.ArenaH)
		e.Fire = Command(spawn)
		e.Shield = entity.NewPlayerShield(spec.ShieldMax, spec.ShieldCharges)
		return e
	case spec.Pattern != nil:
		cfg := *spec.Pattern
		cfg.MinY, cfg.MaxY = band(spec, env.ArenaH, e.H)
		e.Move = Pattern(cfg, env.RNG)
	default:
		e.Move = Drift(spec.Speed)
	}

	if spec.MaxShieldFrames > 0 {
		e.Shield = entity.NewTimedShield(spec.MaxShieldFrames)
		e.Move = WithShieldRoll(e.Move, spec.ShieldProbability, env.RNG)
	}
	if spec.FireRate > 0 {
		e.Fire = Bernoulli(spec.FireRate, env.RNG, spawn)
	}
	return e
}

// Band returns the vertical range allowed for the top edge of a plane of
// the given archetype.
func Band(spec Spec, arenaH float64) (minY, maxY float64) {
	h := spec.H
	if h <= 0 {
		h = 1
	}
	return band(spec, arenaH, h)
}

func band(spec Spec, arenaH, h float64) (minY, maxY float64) {
	top, bottom := spec.BandTop, spec.BandBottom
	if bottom <= top {
		top, bottom = 0, 1
	}
	minY = top * arenaH
	maxY = bottom*arenaH - h
	if maxY < minY {
		maxY = minY
	}
	return minY, maxY
}

// Defaults returns the built-in archetype table.
func Defaults() map[string]Spec {
	return map[string]Spec{
		KindPlayer: {
			Kind: KindPlayer, Faction: entity.Player,
			W: 3, H: 1, Health: 5, VerticalSpeed: 0.8, ShieldMax: entity.DefaultShieldMax,
			Shot: ShotSpec{Kind: "bolt", W: 1, H: 1, Speed: 1.5, Damage: 1},
		},
		KindFighter: {
			Kind: KindFighter, Faction: entity.Enemy,
			W: 3, H: 1, Health: 1, Speed: -0.5, FireRate: 0.01,
			Shot: ShotSpec{Kind: "flak", W: 1, H: 1, Speed: 1.5, Damage: 1},
		},
		KindHeavy: {
			Kind: KindHeavy, Faction: entity.Enemy,
			W: 4, H: 2, Health: 3, Speed: -0.3, FireRate: 0.02,
			Shot: ShotSpec{Kind: "flak", W: 1, H: 1, Speed: 1.2, Damage: 1},
		},
		KindBoss: {
			Kind: KindBoss, Faction: entity.Enemy,
			W: 6, H: 3, Health: 25, FireRate: 0.04,
			Shot:    ShotSpec{Kind: "fireball", W: 2, H: 1, Speed: 1.5, Damage: 1, OffsetY: 1},
			Pattern: &PatternConfig{Speed: 0.5, Frequency: 5, MaxFramesSameMove: 10},
			BandTop: 0.1, BandBottom: 0.9,
			ShieldProbability: 0.01, MaxShieldFrames: 100,
		},
		KindAlly: {
			Kind: KindAlly, Faction: entity.Ally,
			W: 3, H: 1, Health: 3, FireRate: 0.03,
			Shot:    ShotSpec{Kind: "bolt", W: 1, H: 1, Speed: 1.5, Damage: 1},
			Pattern: &PatternConfig{Speed: 0.4, Frequency: 3, MaxFramesSameMove: 8},
			BandTop: 0.2, BandBottom: 0.8,
		},
	}
}

package behavior

import (
	"math/rand"

	"github.com/vovakirdan/tui-skybattle/internal/entity"
)

// ShotSpec describes the projectile a plane fires.
type ShotSpec struct {
	Kind    string  `yaml:"kind"`
	W       float64 `yaml:"w"`
	H       float64 `yaml:"h"`
	Speed   float64 `yaml:"speed"`
	Damage  int     `yaml:"damage"`
	OffsetY float64 `yaml:"offset_y"`
}

// Spawner builds a projectile fired by the given plane.
type Spawner func(firer *entity.Entity) *entity.Entity

// Shot returns a Spawner placing projectiles just outside the firer's box
// on the side it faces. Friendly planes fire rightwards, enemies leftwards.
func Shot(spec ShotSpec) Spawner {
	if spec.W <= 0 {
		spec.W = 1
	}
	if spec.H <= 0 {
		spec.H = 1
	}
	return func(firer *entity.Entity) *entity.Entity {
		box := firer.Box()
		p := &entity.Entity{
			Kind:    spec.Kind,
			Faction: firer.Faction.Shots(),
			Y0:      box.MinY + spec.OffsetY,
			W:       spec.W,
			H:       spec.H,
			Health:  1,
			Damage:  spec.Damage,
		}
		if p.Kind == "" {
			p.Kind = p.Faction.String()
		}
		vx := spec.Speed
		if firer.Faction.Friendly() {
			p.X0 = box.MaxX
		} else {
			p.X0 = box.MinX - spec.W
			vx = -vx
		}
		p.Move = Drift(vx)
		return p
	}
}

// Bernoulli fires with probability p each tick.
func Bernoulli(p float64, rng *rand.Rand, spawn Spawner) entity.FireFunc {
	return func(e *entity.Entity) *entity.Entity {
		if p <= 0 || rng.Float64() >= p {
			return nil
		}
		return spawn(e)
	}
}

// Command fires once per call. It is attached to the player and invoked
// only on an explicit fire command, never from the tick loop.
func Command(spawn Spawner) entity.FireFunc {
	return func(e *entity.Entity) *entity.Entity {
		return spawn(e)
	}
}

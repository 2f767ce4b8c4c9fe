// Package behavior provides the move and fire strategies attached to
// entities at construction, and the archetype table that selects them.
package behavior

import (
	"math/rand"

	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
)

// Drift moves an entity horizontally by vx every tick.
func Drift(vx float64) entity.MoveFunc {
	return func(e *entity.Entity) {
		e.TX += vx
	}
}

// Steer applies the input-driven vertical speed e.VY, keeping the entity
// inside [minY, maxY].
func Steer(minY, maxY float64) entity.MoveFunc {
	return func(e *entity.Entity) {
		if e.VY == 0 {
			return
		}
		y := core.ClampF(e.Y0+e.TY+e.VY, minY, maxY-e.H)
		e.TY = y - e.Y0
	}
}

// PatternConfig tunes a cycling vertical move pattern.
type PatternConfig struct {
	Speed             float64 `yaml:"speed"`                // vertical distance per tick
	Frequency         int     `yaml:"frequency"`            // copies of each move in the pattern
	MaxFramesSameMove int     `yaml:"max_frames_same_move"` // ticks before the pattern is reshuffled
	MinY, MaxY        float64 `yaml:"-"`                    // allowed band for the top edge
}

// Pattern returns a boss-style move: a shuffled list of up, down and hold
// moves, reshuffled every MaxFramesSameMove ticks. A move that would leave
// the band is undone, restoring the exact previous translation.
func Pattern(cfg PatternConfig, rng *rand.Rand) entity.MoveFunc {
	freq := cfg.Frequency
	if freq <= 0 {
		freq = 1
	}
	maxSame := cfg.MaxFramesSameMove
	if maxSame <= 0 {
		maxSame = 1
	}

	moves := make([]float64, 0, freq*3)
	for i := 0; i < freq; i++ {
		moves = append(moves, cfg.Speed, -cfg.Speed, 0)
	}
	shuffle := func() {
		rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	}
	shuffle()

	index, same := 0, 0
	next := func() float64 {
		m := moves[index]
		same++
		if same == maxSame {
			shuffle()
			same = 0
			index++
		}
		if index == len(moves) {
			index = 0
		}
		return m
	}

	return func(e *entity.Entity) {
		prev := e.TY
		e.TY += next()
		if y := e.Y0 + e.TY; y < cfg.MinY || y > cfg.MaxY {
			e.TY = prev
		}
	}
}

// WithShieldRoll wraps move so that, after moving, an entity whose shield
// is down raises it with probability p.
func WithShieldRoll(move entity.MoveFunc, p float64, rng *rand.Rand) entity.MoveFunc {
	return func(e *entity.Entity) {
		if move != nil {
			move(e)
		}
		if e.Shield == nil || e.Shield.Active || p <= 0 {
			return
		}
		if rng.Float64() < p {
			e.Shield.Activate()
		}
	}
}

// Package sim runs level attempts without a terminal. An autopilot flies
// the player and time follows the tick count, so runs are reproducible
// for a given seed.
package sim

import (
	"errors"
	"math"
	"time"

	"github.com/vovakirdan/tui-skybattle/internal/clock"
	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/level"
	"github.com/vovakirdan/tui-skybattle/internal/overlay"
)

// ErrTimeout is returned when an attempt does not finish within MaxTicks.
var ErrTimeout = errors.New("sim: attempt did not finish")

// Options tune the autopilot.
type Options struct {
	// FireEvery fires one shot every N ticks. 0 never fires.
	FireEvery int
	// Track steers toward the nearest enemy.
	Track bool
	// ShieldDistance raises the shield when a hostile projectile is this
	// close to the player. 0 never shields.
	ShieldDistance float64
	// MaxTicks bounds the attempt.
	MaxTicks int
}

// DefaultOptions fly a competent but imperfect pilot.
func DefaultOptions() Options {
	return Options{
		FireEvery:      3,
		Track:          true,
		ShieldDistance: 6,
		MaxTicks:       20000,
	}
}

// Outcome is the result of a headless run.
type Outcome struct {
	Result level.Result
	Ticks  uint64
	Shots  int
	Stats  level.TickStats // collisions accumulated over the run
}

// deadZone keeps the autopilot from jittering around its target.
const deadZone = 0.5

// Run plays def until it finishes or opts.MaxTicks is reached. deps.Time
// is replaced by a manual clock advanced by cfg.TickInterval per tick.
func Run(def level.Definition, cfg core.RuntimeConfig, deps level.Deps, opts Options) (Outcome, error) {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = core.DefaultTickInterval
	}
	if opts.MaxTicks <= 0 {
		opts.MaxTicks = DefaultOptions().MaxTicks
	}

	src := clock.NewManual(time.Unix(0, 0))
	deps.Time = src

	var total level.TickStats
	deps.Observer = level.Observers{deps.Observer, tickSum{&total}}

	ctrl := level.New(def, cfg, deps)
	defer ctrl.Close()
	ctrl.Start()
	for i := 0; i < overlay.CountdownSteps; i++ {
		ctrl.StepCountdown()
	}

	out := Outcome{}
	for i := 0; i < opts.MaxTicks; i++ {
		if r, ok := ctrl.Result(); ok {
			out.Result = r
			out.Ticks = ctrl.Ticks()
			out.Stats = total
			return out, nil
		}
		if ctrl.State() != overlay.None {
			break
		}

		snap := ctrl.Snapshot()
		if opts.Track {
			ctrl.Handle(steer(snap))
		}
		if opts.ShieldDistance > 0 && threatened(snap, opts.ShieldDistance) {
			ctrl.Handle(core.ActionShield)
		}
		if opts.FireEvery > 0 && i%opts.FireEvery == 0 && ctrl.Handle(core.ActionFire) {
			out.Shots++
		}

		src.Advance(cfg.TickInterval)
		ctrl.Tick()
	}

	if r, ok := ctrl.Result(); ok {
		out.Result = r
		out.Ticks = ctrl.Ticks()
		out.Stats = total
		return out, nil
	}
	out.Ticks = ctrl.Ticks()
	out.Stats = total
	return out, ErrTimeout
}

// steer picks a vertical action that lines the player up with the
// nearest enemy.
func steer(s level.Snapshot) core.Action {
	p, ok := player(s)
	if !ok {
		return core.ActionNone
	}
	py := p.Y + p.H/2

	best := math.Inf(1)
	target := py
	for _, e := range s.Entities {
		if e.Faction != entity.Enemy {
			continue
		}
		if d := e.X - p.X; d >= 0 && d < best {
			best = d
			target = e.Y + e.H/2
		}
	}

	diff := target - py
	switch {
	case diff > deadZone:
		return core.ActionDown
	case diff < -deadZone:
		return core.ActionUp
	default:
		return core.ActionStop
	}
}

// threatened reports whether a hostile projectile is within dist of the
// player's nose.
func threatened(s level.Snapshot, dist float64) bool {
	p, ok := player(s)
	if !ok {
		return false
	}
	for _, e := range s.Entities {
		if e.Faction != entity.EnemyProjectile {
			continue
		}
		if e.X+e.W < p.X || e.X-(p.X+p.W) > dist {
			continue
		}
		if e.Y+e.H >= p.Y && e.Y <= p.Y+p.H {
			return true
		}
	}
	return false
}

func player(s level.Snapshot) (level.EntityView, bool) {
	for _, e := range s.Entities {
		if e.Faction == entity.Player {
			return e, true
		}
	}
	return level.EntityView{}, false
}

type tickSum struct {
	total *level.TickStats
}

func (t tickSum) OnTick(_ level.Snapshot, st level.TickStats) {
	t.total.Collisions.Add(st.Collisions)
	t.total.Spawned += st.Spawned
	t.total.Swept += st.Swept
	t.total.Duration += st.Duration
}

func (tickSum) OnFinish(level.Result) {}

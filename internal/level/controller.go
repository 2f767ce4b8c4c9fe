package level

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-skybattle/internal/behavior"
	"github.com/vovakirdan/tui-skybattle/internal/clock"
	"github.com/vovakirdan/tui-skybattle/internal/collision"
	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/overlay"
	"github.com/vovakirdan/tui-skybattle/internal/world"
)

// DefaultPlayerHealth is used when a level does not set one.
const DefaultPlayerHealth = 5

// playerX is the player's horizontal position as an arena fraction.
const playerX = 0.05

// Option configures a Controller.
type Option func(*Controller)

// WithStrict makes registry logic errors panic.
func WithStrict(strict bool) Option {
	return func(c *Controller) {
		c.strict = strict
	}
}

// WithSteerHold keeps a move command active for n ticks and then stops,
// for hosts that cannot report key releases. Zero moves until Stop.
func WithSteerHold(n int) Option {
	return func(c *Controller) {
		c.steerHold = n
	}
}

// Controller drives one attempt at a level. It is single-threaded: Tick,
// Handle, StepCountdown and Resolve must be called from the same goroutine.
type Controller struct {
	def   Definition
	cfg   core.RuntimeConfig
	arena core.Box
	env   behavior.Env
	rng   *rand.Rand

	reg        *world.Registry
	collisions *collision.System
	overlay    *overlay.Machine
	clock      *clock.Clock
	spawner    *WaveSpawner

	audio     AudioCue
	bestTimes BestTimeStore
	observer  Observer
	log       *log.Logger

	player     *entity.Entity
	playerSpec behavior.Spec
	maxHealth  int
	wave       []*entity.Entity // spawned during the current wave

	strict    bool
	steerHold int
	steerLeft int

	ticks    uint64
	started  bool
	result   *Result
	resolved bool
	closed   bool
}

// New creates a controller for one attempt at def. Call Start to place
// the player and begin the countdown.
func New(def Definition, cfg core.RuntimeConfig, deps Deps, opts ...Option) *Controller {
	deps = deps.withDefaults()
	w, h := cfg.Arena()

	c := &Controller{
		def:        def,
		cfg:        cfg,
		arena:      core.NewBox(0, 0, w, h),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		collisions: collision.New(),
		clock:      clock.New(deps.Time),
		spawner:    NewWaveSpawner(def.Waves),
		audio:      deps.Audio,
		bestTimes:  deps.BestTimes,
		observer:   deps.Observer,
		log:        deps.Logger.With("level", def.ID),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.env = behavior.Env{ArenaW: w, ArenaH: h, RNG: c.rng}
	c.reg = world.New(
		world.WithRenderer(deps.Renderer),
		world.WithStrict(c.strict),
		world.WithUncausedHook(func(e *entity.Entity) {
			c.log.Warn("entity destroyed without a cause", "id", e.ID, "kind", e.Kind, "faction", e.Faction)
		}),
	)
	c.overlay = overlay.New(
		overlay.OnChange(c.onOverlayChange),
		overlay.OnStart(c.onCountdownDone),
	)
	return c
}

// Start places the player and allies and begins the countdown.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true

	spec, ok := c.def.Archetype(behavior.KindPlayer)
	if !ok {
		spec = behavior.Defaults()[behavior.KindPlayer]
	}
	spec.Faction = entity.Player
	spec.Health = c.def.PlayerHealth
	if spec.Health <= 0 {
		spec.Health = DefaultPlayerHealth
	}
	spec.ShieldCharges = c.def.ShieldCharges
	c.playerSpec = spec
	c.maxHealth = spec.Health

	y := (c.arena.Height() - spec.H) / 2
	c.player = behavior.Build(spec, c.arena.Width()*playerX, y, c.env)
	c.reg.Add(c.player)

	for _, a := range c.def.Allies {
		as, ok := c.def.Archetype(a.Archetype)
		if !ok {
			c.log.Warn("unknown ally archetype", "archetype", a.Archetype)
			continue
		}
		as.Faction = entity.Ally
		ally := behavior.Build(as, a.X*c.arena.Width(), a.Y*c.arena.Height(), c.env)
		c.reg.Add(ally)
	}

	c.overlay.BeginCountdown()
	c.log.Debug("attempt started", "seed", c.cfg.Seed, "arena_w", c.arena.Width(), "arena_h", c.arena.Height())
}

// StepCountdown advances the start sequence by one step. The clock starts
// when it completes.
func (c *Controller) StepCountdown() (remaining int, done bool) {
	return c.overlay.StepCountdown()
}

// Tick advances the simulation by one step. It is a no-op unless the
// overlay state is None and the attempt is still running.
func (c *Controller) Tick() {
	if c.closed || !c.started || !c.overlay.Advancing() {
		return
	}
	start := time.Now()
	c.ticks++

	if c.player.Destroyed() {
		c.finish(false)
		return
	}
	if c.won() {
		c.finish(true)
		return
	}

	spawned := c.spawn()

	for _, e := range c.reg.All() {
		e.Update()
	}
	c.steer()
	c.fire()

	rep := c.collisions.Run(c.reg, c.arena)
	swept := c.reg.RemoveDestroyed()

	c.observer.OnTick(c.Snapshot(), TickStats{
		Collisions: rep,
		Spawned:    spawned,
		Swept:      swept,
		Duration:   time.Since(start),
	})
}

// Handle delivers one input action. Gameplay actions are dropped unless
// the attempt is running; pause reaches the overlay only from None or
// Pause and is consumed otherwise. Returns whether the action had an effect.
func (c *Controller) Handle(a core.Action) bool {
	if c.closed || !c.started {
		return false
	}
	switch a {
	case core.ActionPause:
		return c.overlay.TogglePause()
	case core.ActionExit:
		return c.overlay.OpenExit()
	}
	if !a.Gameplay() || !c.overlay.AcceptsInput() || c.player.Destroyed() {
		return false
	}

	switch a {
	case core.ActionUp:
		c.setSteer(-c.playerSpec.VerticalSpeed)
	case core.ActionDown:
		c.setSteer(c.playerSpec.VerticalSpeed)
	case core.ActionStop:
		c.setSteer(0)
	case core.ActionFire:
		p := c.player.TryFire()
		if p == nil {
			return false
		}
		c.reg.Add(p)
		c.audio.Play(CueFire)
	case core.ActionShield:
		if c.player.Shield == nil || !c.player.Shield.Activate() {
			return false
		}
		c.audio.Play(CueShield)
	}
	return true
}

// Resolve turns the user's answer to the active overlay into a
// transition. From Exit, ChoiceResume closes the overlay without one.
// At most one transition is emitted per attempt.
func (c *Controller) Resolve(choice Choice) (Transition, bool) {
	if c.resolved || c.closed {
		return Transition{}, false
	}

	var t Transition
	switch c.overlay.State() {
	case overlay.Win:
		switch choice {
		case ChoiceNext:
			if c.def.Final() {
				t = Transition{Kind: ReturnToMenu}
			} else {
				t = Transition{Kind: Advance, Level: c.def.Next}
			}
		case ChoiceRestart:
			t = Transition{Kind: Restart, Level: c.def.ID}
		case ChoiceMenu:
			t = Transition{Kind: ReturnToMenu}
		default:
			return Transition{}, false
		}
	case overlay.GameOver:
		switch choice {
		case ChoiceRestart:
			t = Transition{Kind: Restart, Level: c.def.ID}
		case ChoiceMenu:
			t = Transition{Kind: ReturnToMenu}
		default:
			return Transition{}, false
		}
	case overlay.Exit:
		switch choice {
		case ChoiceResume:
			c.overlay.DismissExit()
			return Transition{}, false
		case ChoiceMenu:
			c.overlay.DismissExit()
			t = Transition{Kind: ReturnToMenu}
		case ChoiceRestart:
			c.overlay.DismissExit()
			t = Transition{Kind: Restart, Level: c.def.ID}
		default:
			return Transition{}, false
		}
	default:
		return Transition{}, false
	}

	c.resolved = true
	c.log.Info("level transition", "kind", t.Kind, "target", t.Level)
	return t, true
}

// Close releases the registry and stops the clock. The controller is
// inert afterwards.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.clock.Stop()
	c.reg.Clear()
	c.wave = nil
	if co, ok := c.observer.(CloseObserver); ok {
		co.OnClose(c.def.ID)
	}
}

// Definition returns the level being played.
func (c *Controller) Definition() Definition { return c.def }

// State returns the active overlay.
func (c *Controller) State() overlay.State { return c.overlay.State() }

// Ticks returns the number of simulated ticks.
func (c *Controller) Ticks() uint64 { return c.ticks }

// Player returns the player plane, nil before Start.
func (c *Controller) Player() *entity.Entity { return c.player }

// Registry exposes the entity registry.
func (c *Controller) Registry() *world.Registry { return c.reg }

// Clock exposes the game clock.
func (c *Controller) Clock() *clock.Clock { return c.clock }

// Result returns the outcome once the attempt finished.
func (c *Controller) Result() (Result, bool) {
	if c.result == nil {
		return Result{}, false
	}
	return *c.result, true
}

func (c *Controller) spawn() int {
	if c.spawner.Advance(c.player.Kills) {
		c.wave = nil
		c.log.Info("wave advanced", "wave", c.spawner.Index()+1, "kills", c.player.Kills)
	}
	kind, n := c.spawner.Plan(c.reg.CountLive(world.Enemies), c.rng)
	if n == 0 {
		return 0
	}
	spec, ok := c.def.Archetype(kind)
	if !ok {
		c.log.Warn("unknown enemy archetype", "archetype", kind)
		return 0
	}
	spec.Faction = entity.Enemy
	minY, maxY := behavior.Band(spec, c.arena.Height())
	for i := 0; i < n; i++ {
		y := minY + c.rng.Float64()*(maxY-minY)
		x := c.arena.Width()
		if spec.Pattern != nil {
			// Stationary archetypes hold position near the far edge.
			x = c.arena.Width() - spec.W - 2
		}
		e := behavior.Build(spec, x, y, c.env)
		c.reg.Add(e)
		c.wave = append(c.wave, e)
	}
	return n
}

func (c *Controller) fire() {
	for _, e := range c.reg.Iter(world.Enemies) {
		if p := e.TryFire(); p != nil {
			c.reg.Add(p)
		}
	}
	for _, a := range c.reg.Allies() {
		if p := a.TryFire(); p != nil {
			c.reg.Add(p)
		}
	}
}

func (c *Controller) setSteer(vy float64) {
	c.player.VY = vy
	c.steerLeft = c.steerHold
}

func (c *Controller) steer() {
	if c.steerHold == 0 || c.player.VY == 0 {
		return
	}
	c.steerLeft--
	if c.steerLeft <= 0 {
		c.player.VY = 0
	}
}

func (c *Controller) won() bool {
	switch c.def.Goal {
	case GoalKills:
		return c.def.KillTarget > 0 && c.player.Kills >= c.def.KillTarget
	case GoalWaves:
		return c.spawner.Len() > 0 && c.spawner.Complete()
	case GoalBoss:
		if c.spawner.Index() != c.spawner.Len()-1 || !c.spawner.Exhausted() {
			return false
		}
		for _, e := range c.wave {
			if e.Live() {
				return false
			}
		}
		return len(c.wave) > 0
	default:
		return false
	}
}

func (c *Controller) finish(won bool) {
	c.clock.Stop()
	elapsed := c.clock.Seconds()
	res := Result{
		Level:   c.def.ID,
		Won:     won,
		Elapsed: elapsed,
		Kills:   c.player.Kills,
		Ticks:   c.ticks,
	}

	best, ok, err := c.bestTimes.BestTime(c.def.ID)
	if err != nil {
		c.log.Error("cannot read best time", "err", err)
		ok = false
	}
	res.Best, res.HasBest = best, ok
	if won && (!ok || elapsed < best) {
		if err := c.bestTimes.SetBestTime(c.def.ID, elapsed); err != nil {
			c.log.Error("cannot record best time", "err", err)
		} else {
			res.Best, res.HasBest, res.NewBest = elapsed, true, true
		}
	}
	c.result = &res

	if won {
		c.audio.Play(CueVictory)
		c.overlay.Win()
	} else {
		c.audio.Play(CueDefeat)
		c.overlay.GameOver()
	}
	c.log.Info("attempt finished", "won", won, "elapsed", elapsed, "kills", res.Kills, "new_best", res.NewBest)
	c.observer.OnFinish(res)
}

func (c *Controller) onOverlayChange(from, to overlay.State) {
	c.log.Debug("overlay", "from", from, "to", to)
	switch {
	case to == overlay.Pause || to == overlay.Exit:
		c.clock.Pause()
	case to == overlay.None && (from == overlay.Pause || from == overlay.Exit):
		c.clock.Resume()
	}
}

func (c *Controller) onCountdownDone() {
	c.clock.Start()
	c.log.Debug("countdown complete")
}

package level

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/tui-skybattle/internal/clock"
	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/overlay"
	"github.com/vovakirdan/tui-skybattle/internal/world"
)

type memStore struct {
	times map[string]float64
	sets  int
	err   error
}

func newMemStore() *memStore {
	return &memStore{times: make(map[string]float64)}
}

func (m *memStore) BestTime(id string) (float64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	t, ok := m.times[id]
	return t, ok, nil
}

func (m *memStore) SetBestTime(id string, secs float64) error {
	m.sets++
	m.times[id] = secs
	return nil
}

type cueLog []Cue

func (c *cueLog) Play(cue Cue) { *c = append(*c, cue) }

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickInterval: 50 * time.Millisecond, Seed: 1}
}

func killsLevel(target int) Definition {
	return Definition{ID: "test", Name: "Test", Next: "after", PlayerHealth: 5, ShieldCharges: 1, Goal: GoalKills, KillTarget: target}
}

// running returns a started controller past its countdown.
func running(t *testing.T, def Definition, deps Deps) *Controller {
	t.Helper()
	c := New(def, testConfig(), deps, WithStrict(true))
	c.Start()
	for i := 0; i < overlay.CountdownSteps; i++ {
		c.StepCountdown()
	}
	if c.State() != overlay.None {
		t.Fatalf("state after countdown = %v", c.State())
	}
	return c
}

func breacher() *entity.Entity {
	return &entity.Entity{Kind: "fighter", Faction: entity.Enemy, X0: 80, Y0: 2, W: 3, H: 1, Health: 1, TX: -81}
}

func TestFivePenetrationsEndInGameOver(t *testing.T) {
	cues := &cueLog{}
	c := running(t, killsLevel(100), Deps{Audio: cues})

	for i := 0; i < 5; i++ {
		c.Registry().Add(breacher())
		c.Tick()
	}

	if c.Player().Health != 0 {
		t.Fatalf("player Health = %d, expected 0", c.Player().Health)
	}
	if c.State() != overlay.None {
		t.Fatalf("game over should be detected on the next tick, state = %v", c.State())
	}

	c.Tick()
	if c.State() != overlay.GameOver {
		t.Errorf("State() = %v, expected game-over", c.State())
	}
	if res, ok := c.Result(); !ok || res.Won {
		t.Errorf("Result() = %+v, %v", res, ok)
	}
	if len(*cues) == 0 || (*cues)[len(*cues)-1] != CueDefeat {
		t.Errorf("cues = %v, expected defeat last", *cues)
	}

	// Inert afterwards.
	ticks := c.Ticks()
	c.Tick()
	if c.Ticks() != ticks {
		t.Error("Tick should be a no-op after game over")
	}
}

func TestLoseTakesPriorityOverWin(t *testing.T) {
	c := running(t, killsLevel(1), Deps{})
	c.Player().Kills = 1
	c.Player().Destroy(entity.CauseCollisionWithUser)

	c.Tick()
	if c.State() != overlay.GameOver {
		t.Errorf("State() = %v, expected game-over", c.State())
	}
}

func TestPauseConsumedAfterWin(t *testing.T) {
	c := running(t, killsLevel(1), Deps{})
	c.Player().Kills = 1
	c.Tick()

	if c.State() != overlay.Win {
		t.Fatalf("State() = %v, expected win", c.State())
	}
	if c.Handle(core.ActionPause) {
		t.Error("pause should be consumed in win")
	}
	if c.State() != overlay.Win {
		t.Errorf("State() = %v, expected win to remain", c.State())
	}
}

func TestBestTimeRecordedOnlyWhenBetter(t *testing.T) {
	tests := []struct {
		name      string
		stored    float64
		hasStored bool
		won       bool
		wantSet   bool
		wantBest  float64
	}{
		{"absent record", 0, false, true, true, 12},
		{"slower than best", 10, true, true, false, 10},
		{"faster than best", 15, true, true, true, 12},
		{"equal to best", 12, true, true, false, 12},
		{"defeat never records", 0, false, false, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			if tc.hasStored {
				store.times["test"] = tc.stored
			}
			src := clock.NewManual(time.Unix(0, 0))
			c := running(t, killsLevel(1), Deps{BestTimes: store, Time: src})

			src.Advance(12 * time.Second)
			if tc.won {
				c.Player().Kills = 1
			} else {
				c.Player().Destroy(entity.CauseCollisionWithUser)
			}
			c.Tick()

			if (store.sets > 0) != tc.wantSet {
				t.Errorf("store written = %v, expected %v", store.sets > 0, tc.wantSet)
			}
			res, _ := c.Result()
			if res.NewBest != tc.wantSet {
				t.Errorf("NewBest = %v, expected %v", res.NewBest, tc.wantSet)
			}
			if res.Best != tc.wantBest {
				t.Errorf("Best = %v, expected %v", res.Best, tc.wantBest)
			}
			if res.Elapsed != 12 {
				t.Errorf("Elapsed = %v, expected 12", res.Elapsed)
			}
		})
	}
}

func TestBestTimeStoreErrorIsSwallowed(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk on fire")
	c := running(t, killsLevel(1), Deps{BestTimes: store})
	c.Player().Kills = 1
	c.Tick()

	if c.State() != overlay.Win {
		t.Errorf("State() = %v, expected win despite store error", c.State())
	}
}

func TestInputGating(t *testing.T) {
	c := New(killsLevel(100), testConfig(), Deps{}, WithStrict(true))
	if c.Handle(core.ActionFire) {
		t.Error("input before Start should be ignored")
	}
	c.Start()

	if c.Handle(core.ActionFire) || c.Handle(core.ActionUp) {
		t.Error("gameplay input should be ignored during the countdown")
	}
	if c.Handle(core.ActionPause) {
		t.Error("pause should be consumed during the countdown")
	}
	for i := 0; i < overlay.CountdownSteps; i++ {
		c.StepCountdown()
	}

	if !c.Handle(core.ActionFire) {
		t.Fatal("fire should work while running")
	}
	if got := c.Registry().Count(world.UserProjectiles); got != 1 {
		t.Errorf("user projectiles = %d, expected 1", got)
	}

	c.Handle(core.ActionPause)
	if c.Handle(core.ActionFire) || c.Handle(core.ActionShield) {
		t.Error("gameplay input should be ignored while paused")
	}
	ticks := c.Ticks()
	c.Tick()
	if c.Ticks() != ticks {
		t.Error("Tick should not advance while paused")
	}

	if !c.Handle(core.ActionPause) {
		t.Error("second toggle should resume")
	}
	if !c.Handle(core.ActionShield) {
		t.Error("shield should activate with a charge left")
	}
	if c.Handle(core.ActionShield) {
		t.Error("shield should not re-activate while up")
	}
}

func TestSteerHold(t *testing.T) {
	c := New(killsLevel(100), testConfig(), Deps{}, WithSteerHold(2))
	c.Start()
	for i := 0; i < overlay.CountdownSteps; i++ {
		c.StepCountdown()
	}

	_, y0 := c.Player().Position()
	c.Handle(core.ActionUp)
	for i := 0; i < 5; i++ {
		c.Tick()
	}
	_, y1 := c.Player().Position()
	want := y0 - 2*c.playerSpec.VerticalSpeed
	if math.Abs(y1-want) > 1e-9 {
		t.Errorf("y = %v after hold of 2, expected %v", y1, want)
	}
	if c.Player().VY != 0 {
		t.Error("steering should stop after the hold")
	}
}

func TestClockFollowsOverlay(t *testing.T) {
	src := clock.NewManual(time.Unix(0, 0))
	c := New(killsLevel(100), testConfig(), Deps{Time: src})
	c.Start()

	src.Advance(time.Minute)
	for i := 0; i < overlay.CountdownSteps; i++ {
		c.StepCountdown()
	}
	if c.Clock().Elapsed() != 0 {
		t.Error("clock should start when the countdown completes")
	}

	src.Advance(2 * time.Second)
	c.Handle(core.ActionExit)
	src.Advance(time.Hour)
	c.Resolve(ChoiceResume)
	src.Advance(time.Second)

	if got := c.Clock().Elapsed(); got != 3*time.Second {
		t.Errorf("Elapsed() = %v, expected 3s", got)
	}
}

func TestResolve(t *testing.T) {
	t.Run("win advances", func(t *testing.T) {
		c := running(t, killsLevel(1), Deps{})
		c.Player().Kills = 1
		c.Tick()

		tr, ok := c.Resolve(ChoiceNext)
		if !ok || tr.Kind != Advance || tr.Level != "after" {
			t.Errorf("Resolve() = %+v, %v", tr, ok)
		}
		if _, ok := c.Resolve(ChoiceMenu); ok {
			t.Error("only one transition per attempt")
		}
	})

	t.Run("final level returns to menu", func(t *testing.T) {
		def := killsLevel(1)
		def.Next = ""
		c := running(t, def, Deps{})
		c.Player().Kills = 1
		c.Tick()

		if tr, ok := c.Resolve(ChoiceNext); !ok || tr.Kind != ReturnToMenu {
			t.Errorf("Resolve() = %+v, %v", tr, ok)
		}
	})

	t.Run("game over restarts", func(t *testing.T) {
		c := running(t, killsLevel(1), Deps{})
		c.Player().Destroy(entity.CausePenetration)
		c.Tick()

		if _, ok := c.Resolve(ChoiceNext); ok {
			t.Error("cannot advance after a defeat")
		}
		if tr, ok := c.Resolve(ChoiceRestart); !ok || tr.Kind != Restart || tr.Level != "test" {
			t.Errorf("Resolve() = %+v, %v", tr, ok)
		}
	})

	t.Run("exit resume", func(t *testing.T) {
		c := running(t, killsLevel(1), Deps{})
		if _, ok := c.Resolve(ChoiceMenu); ok {
			t.Error("nothing to resolve while running")
		}
		c.Handle(core.ActionExit)
		if _, ok := c.Resolve(ChoiceResume); ok {
			t.Error("resume should not emit a transition")
		}
		if c.State() != overlay.None {
			t.Errorf("State() = %v, expected none", c.State())
		}
		c.Handle(core.ActionExit)
		if tr, ok := c.Resolve(ChoiceMenu); !ok || tr.Kind != ReturnToMenu {
			t.Errorf("Resolve() = %+v, %v", tr, ok)
		}
	})
}

func TestSpawnCap(t *testing.T) {
	def := Definition{
		ID: "cap", PlayerHealth: 1000, Goal: GoalKills, KillTarget: 1000,
		Waves: []Wave{{Archetype: "fighter", Cap: 3, SpawnProbability: 1}},
	}
	c := running(t, def, Deps{})

	seen := 0
	for i := 0; i < 600; i++ {
		c.Tick()
		live := c.Registry().CountLive(world.Enemies)
		if live > 3 {
			t.Fatalf("tick %d: %d live enemies exceed cap 3", i, live)
		}
		if live > seen {
			seen = live
		}
	}
	if seen != 3 {
		t.Errorf("max live enemies = %d, expected the cap to be reached", seen)
	}
}

func TestWaveAdvance(t *testing.T) {
	s := NewWaveSpawner([]Wave{
		{Archetype: "fighter", Cap: 2, SpawnProbability: 1, KillsToAdvance: 3},
		{Archetype: "heavy", Cap: 1, SpawnProbability: 1, KillsToAdvance: 2},
	})

	if s.Advance(2) {
		t.Error("wave should not advance before its kill count")
	}
	if !s.Advance(3) || s.Index() != 1 {
		t.Fatalf("Index() = %d, expected 1", s.Index())
	}
	if w, _ := s.Current(); w.Archetype != "heavy" {
		t.Errorf("Current() = %q, expected heavy", w.Archetype)
	}
	// Kills are counted from the start of the wave.
	if s.Advance(4) {
		t.Error("one kill into the second wave should not advance")
	}
	s.Advance(5)
	if !s.Complete() {
		t.Error("spawner should be complete")
	}
	if kind, n := s.Plan(0, nil); kind != "" || n != 0 {
		t.Errorf("complete spawner planned %q x%d", kind, n)
	}
}

func TestBossGoal(t *testing.T) {
	def := Definition{
		ID: "boss", PlayerHealth: 5, Goal: GoalBoss,
		Waves: []Wave{{Archetype: "boss", Cap: 1, SpawnProbability: 1, Total: 1}},
	}
	c := running(t, def, Deps{})

	c.Tick()
	enemies := c.Registry().Iter(world.Enemies)
	if len(enemies) != 1 || enemies[0].Kind != "boss" {
		t.Fatalf("expected exactly one boss, got %d enemies", len(enemies))
	}
	boss := enemies[0]

	for i := 0; i < 20; i++ {
		c.Tick()
	}
	if n := c.Registry().Count(world.Enemies); n != 1 {
		t.Fatalf("boss wave spawned %d enemies, expected 1", n)
	}

	boss.Destroy(entity.CauseUserProjectile)
	c.Tick()
	if c.State() != overlay.Win {
		t.Errorf("State() = %v, expected win after the boss falls", c.State())
	}
}

func TestDeterministicReplay(t *testing.T) {
	def := Definition{
		ID: "replay", PlayerHealth: 50, Goal: GoalKills, KillTarget: 1000,
		Waves:  []Wave{{Archetype: "fighter", Cap: 4, SpawnProbability: 0.05}},
		Allies: []AllySpec{{Archetype: "ally", X: 0.15, Y: 0.3}},
	}
	a := running(t, def, Deps{})
	b := running(t, def, Deps{})

	for i := 0; i < 400; i++ {
		if i%7 == 0 {
			a.Handle(core.ActionFire)
			b.Handle(core.ActionFire)
		}
		a.Tick()
		b.Tick()

		sa, sb := a.Snapshot(), b.Snapshot()
		if len(sa.Entities) != len(sb.Entities) {
			t.Fatalf("tick %d: entity count diverged: %d vs %d", i, len(sa.Entities), len(sb.Entities))
		}
		for j := range sa.Entities {
			if sa.Entities[j] != sb.Entities[j] {
				t.Fatalf("tick %d: entity %d diverged: %+v vs %+v", i, j, sa.Entities[j], sb.Entities[j])
			}
		}
	}
}

func TestCloseReleasesEntities(t *testing.T) {
	c := running(t, killsLevel(100), Deps{})
	c.Handle(core.ActionFire)
	c.Close()

	if c.Registry().Len() != 0 {
		t.Error("Close should clear the registry")
	}
	if c.Clock().Running() {
		t.Error("Close should stop the clock")
	}
	if c.Handle(core.ActionFire) {
		t.Error("closed controller should ignore input")
	}
}

type closeLog struct {
	nopObserver
	closed []string
}

func (c *closeLog) OnClose(level string) { c.closed = append(c.closed, level) }

func TestCloseNotifiesObservers(t *testing.T) {
	obs := &closeLog{}
	c := running(t, killsLevel(100), Deps{Observer: Observers{nil, obs}})
	c.Close()
	c.Close()

	if len(obs.closed) != 1 || obs.closed[0] != "test" {
		t.Errorf("OnClose calls = %v, expected [test]", obs.closed)
	}
}

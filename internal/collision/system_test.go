package collision

import (
	"testing"

	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/world"
)

var arena = core.NewBox(0, 0, 80, 23)

type fixture struct {
	reg    *world.Registry
	player *entity.Entity
}

func newFixture() *fixture {
	reg := world.New(world.WithStrict(true))
	player := &entity.Entity{Kind: "player", Faction: entity.Player, X0: 2, Y0: 10, W: 3, H: 1, Health: 5,
		Shield: entity.NewPlayerShield(5, 1)}
	reg.Add(player)
	return &fixture{reg: reg, player: player}
}

func (f *fixture) add(fac entity.Faction, x, y float64, health int) *entity.Entity {
	w := 1.0
	if !fac.IsProjectile() {
		w = 3
	}
	e := &entity.Entity{Faction: fac, X0: x, Y0: y, W: w, H: 1, Health: health}
	f.reg.Add(e)
	return e
}

func TestUserProjectileKillsEnemy(t *testing.T) {
	f := newFixture()
	enemy := f.add(entity.Enemy, 40, 5, 1)
	shot := f.add(entity.UserProjectile, 40.5, 5, 1)
	kills := f.player.Kills

	rep := New().Run(f.reg, arena)

	if !enemy.Destroyed() || enemy.DestroyedBy() != entity.CauseUserProjectile {
		t.Errorf("enemy destroyed=%v by %v, expected user-projectile", enemy.Destroyed(), enemy.DestroyedBy())
	}
	if f.player.Kills != kills+1 {
		t.Errorf("Kills = %d, expected %d", f.player.Kills, kills+1)
	}
	if !shot.Destroyed() {
		t.Error("projectile should be destroyed")
	}
	if rep.Kills != 1 || rep.EnemyHits != 1 {
		t.Errorf("report = %+v", rep)
	}
	if f.player.Health != 5 {
		t.Errorf("player Health = %d, expected 5", f.player.Health)
	}
}

func TestCollisionSymmetry(t *testing.T) {
	f := newFixture()
	enemy := f.add(entity.Enemy, 40, 5, 3)
	shot := f.add(entity.UserProjectile, 41, 5, 1)

	New().Run(f.reg, arena)

	if enemy.Health != 2 {
		t.Errorf("enemy Health = %d, expected 2", enemy.Health)
	}
	if !shot.Destroyed() || shot.DestroyedBy() != entity.CauseImpact {
		t.Errorf("projectile destroyed=%v by %v, expected impact", shot.Destroyed(), shot.DestroyedBy())
	}
	if f.player.Kills != 0 {
		t.Error("a hit that does not kill should not score")
	}
}

func TestFirstHitPerTick(t *testing.T) {
	f := newFixture()
	first := f.add(entity.Enemy, 40, 5, 2)
	second := f.add(entity.Enemy, 40.5, 5, 2)
	f.add(entity.UserProjectile, 41, 5, 1)

	New().Run(f.reg, arena)

	if first.Health != 1 {
		t.Errorf("first enemy Health = %d, expected 1", first.Health)
	}
	if second.Health != 2 {
		t.Errorf("second enemy Health = %d, expected untouched 2", second.Health)
	}
}

func TestPlaneCollision(t *testing.T) {
	f := newFixture()
	enemy := f.add(entity.Enemy, 3, 10, 1)

	rep := New().Run(f.reg, arena)

	if f.player.Health != 4 {
		t.Errorf("player Health = %d, expected 4", f.player.Health)
	}
	if enemy.DestroyedBy() != entity.CauseCollisionWithUser {
		t.Errorf("enemy DestroyedBy() = %v, expected collision-with-user", enemy.DestroyedBy())
	}
	if rep.PlaneCollisions != 1 || f.player.Kills != 0 {
		t.Errorf("report = %+v, kills = %d", rep, f.player.Kills)
	}
}

func TestProjectileClashRunsBeforeEnemyHits(t *testing.T) {
	f := newFixture()
	enemy := f.add(entity.Enemy, 40, 5, 1)
	shot := f.add(entity.UserProjectile, 40, 5, 1)
	flak := f.add(entity.EnemyProjectile, 40.2, 5, 1)

	rep := New().Run(f.reg, arena)

	if !shot.Destroyed() || !flak.Destroyed() {
		t.Error("clashing projectiles should both be destroyed")
	}
	if enemy.Destroyed() {
		t.Error("projectile spent in the clash should not reach the enemy")
	}
	if rep.ProjectileClashes != 1 {
		t.Errorf("ProjectileClashes = %d, expected 1", rep.ProjectileClashes)
	}
}

func TestEnemyProjectileEvictedOnPlayerHit(t *testing.T) {
	f := newFixture()
	flak := f.add(entity.EnemyProjectile, 3, 10, 1)

	rep := New().Run(f.reg, arena)

	if f.player.Health != 4 {
		t.Errorf("player Health = %d, expected 4", f.player.Health)
	}
	if f.reg.Contains(flak) {
		t.Error("projectile should be evicted immediately")
	}
	if rep.PlayerHits != 1 || rep.Evicted != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestShieldAbsorbsLastHit(t *testing.T) {
	f := newFixture()
	f.player.Shield.Activate()
	f.player.Shield.Absorbed = f.player.Shield.Max - 1
	f.add(entity.EnemyProjectile, 3, 10, 1)

	rep := New().Run(f.reg, arena)

	if f.player.Shield.Active {
		t.Error("shield should deactivate at max")
	}
	if f.player.Shield.Absorbed != 0 {
		t.Errorf("Absorbed = %d, expected reset to 0", f.player.Shield.Absorbed)
	}
	if f.player.Health != 5 {
		t.Errorf("player Health = %d, expected unchanged 5", f.player.Health)
	}
	if rep.Absorbed != 1 {
		t.Errorf("Absorbed count = %d, expected 1", rep.Absorbed)
	}
}

func TestPenetrationOverridesHealth(t *testing.T) {
	f := newFixture()
	enemy := f.add(entity.Enemy, 80, 5, 10)
	enemy.TX = -81

	rep := New().Run(f.reg, arena)

	if !enemy.Destroyed() || enemy.DestroyedBy() != entity.CausePenetration {
		t.Errorf("enemy destroyed=%v by %v, expected penetration", enemy.Destroyed(), enemy.DestroyedBy())
	}
	if enemy.Health != 10 {
		t.Errorf("enemy Health = %d, expected untouched 10", enemy.Health)
	}
	if f.player.Health != 4 {
		t.Errorf("player Health = %d, expected 4", f.player.Health)
	}
	if rep.Penetrations != 1 || f.player.Kills != 0 {
		t.Errorf("report = %+v, kills = %d", rep, f.player.Kills)
	}
}

func TestPenetrationBypassesShield(t *testing.T) {
	f := newFixture()
	f.player.Shield.Activate()
	enemy := f.add(entity.Enemy, 80, 5, 1)
	enemy.TX = -80.5

	New().Run(f.reg, arena)

	if f.player.Health != 4 {
		t.Errorf("player Health = %d, expected 4", f.player.Health)
	}
	if f.player.Shield.Absorbed != 0 {
		t.Error("penetration damage should not touch the shield")
	}
}

func TestFivePenetrationsKillPlayer(t *testing.T) {
	f := newFixture()
	sys := New()

	for i := 0; i < 5; i++ {
		enemy := f.add(entity.Enemy, 80, 5, 1)
		enemy.TX = -90
		sys.Run(f.reg, arena)
		f.reg.RemoveDestroyed()
	}

	if f.player.Health != 0 {
		t.Errorf("player Health = %d, expected 0", f.player.Health)
	}
	if !f.player.Destroyed() || f.player.DestroyedBy() != entity.CausePenetration {
		t.Errorf("player destroyed=%v by %v", f.player.Destroyed(), f.player.DestroyedBy())
	}
}

func TestAllyPasses(t *testing.T) {
	f := newFixture()
	ally := f.add(entity.Ally, 10, 15, 3)
	flak := f.add(entity.EnemyProjectile, 11, 15, 1)
	enemy := f.add(entity.Enemy, 50, 2, 1)
	f.add(entity.AllyProjectile, 50, 2, 1)

	rep := New().Run(f.reg, arena)

	if ally.Health != 2 || !flak.Destroyed() {
		t.Errorf("ally Health = %d, flak destroyed = %v", ally.Health, flak.Destroyed())
	}
	if enemy.DestroyedBy() != entity.CauseUserProjectile {
		t.Errorf("enemy DestroyedBy() = %v, expected user-projectile", enemy.DestroyedBy())
	}
	if f.player.Kills != 1 {
		t.Errorf("ally kill should be credited to the player, Kills = %d", f.player.Kills)
	}
	if rep.AllyHits != 1 || rep.Kills != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestOutOfBoundsSweep(t *testing.T) {
	f := newFixture()
	far := f.add(entity.UserProjectile, arena.Width()+50, 5, 1)
	inside := f.add(entity.EnemyProjectile, 79.5, 5, 1)
	left := f.add(entity.EnemyProjectile, -3, 5, 1)

	rep := New().Run(f.reg, arena)

	if !far.Destroyed() || far.DestroyedBy() != entity.CauseOutOfBounds {
		t.Errorf("far projectile destroyed=%v by %v", far.Destroyed(), far.DestroyedBy())
	}
	if f.reg.Contains(far) || f.reg.Contains(left) {
		t.Error("out-of-bounds projectiles should be evicted")
	}
	if inside.Destroyed() {
		t.Error("projectile straddling the edge should survive")
	}
	if rep.OutOfBounds != 2 || f.player.Kills != 0 {
		t.Errorf("report = %+v, kills = %d", rep, f.player.Kills)
	}
}

func TestDestroyedEntitiesAreInert(t *testing.T) {
	f := newFixture()
	enemy := f.add(entity.Enemy, 40, 5, 1)
	enemy.Destroy(entity.CauseUserProjectile)
	shot := f.add(entity.UserProjectile, 40, 5, 1)

	New().Run(f.reg, arena)

	if shot.Destroyed() {
		t.Error("a destroyed enemy should not absorb projectiles")
	}
	if enemy.Health != 1 || enemy.DestroyedBy() != entity.CauseUserProjectile {
		t.Error("destroyed enemy state changed")
	}
}

// Package collision resolves contacts between the partitions of a world
// registry, in a fixed order of passes run once per tick.
package collision

import (
	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/world"
)

// DefaultPenetrationDamage is the damage the player takes per enemy that
// breaches the far edge.
const DefaultPenetrationDamage = 1

// Report counts what happened during one Run.
type Report struct {
	PlaneCollisions   int // pass 1 contacts
	ProjectileClashes int // pass 2 contacts
	EnemyHits         int // passes 3 and 7 contacts
	Kills             int // enemies killed by projectiles, credited to the player
	PlayerHits        int // pass 4 contacts
	Absorbed          int // hits taken by a shield
	Penetrations      int // pass 5 breaches
	AllyHits          int // pass 6 contacts
	OutOfBounds       int // pass 8 projectiles
	Evicted           int // entities evicted immediately by passes 4 and 8
}

// Add accumulates o into r.
func (r *Report) Add(o Report) {
	r.PlaneCollisions += o.PlaneCollisions
	r.ProjectileClashes += o.ProjectileClashes
	r.EnemyHits += o.EnemyHits
	r.Kills += o.Kills
	r.PlayerHits += o.PlayerHits
	r.Absorbed += o.Absorbed
	r.Penetrations += o.Penetrations
	r.AllyHits += o.AllyHits
	r.OutOfBounds += o.OutOfBounds
	r.Evicted += o.Evicted
}

// System runs the collision passes.
type System struct {
	PenetrationDamage int
}

// New creates a collision system with default tuning.
func New() *System {
	return &System{PenetrationDamage: DefaultPenetrationDamage}
}

// Run executes every pass in order against reg. Later passes rely on
// destruction flagged by earlier ones: destroyed entities are skipped.
//
// Within a pass each entity resolves at most one contact per tick, with
// the first intersecting partner in registry order.
func (s *System) Run(reg *world.Registry, arena core.Box) Report {
	var rep Report
	player := reg.Player()

	s.planes(reg, &rep)
	s.projectiles(reg, world.UserProjectiles, &rep)
	s.projectiles(reg, world.AllyProjectiles, &rep)
	s.shootEnemies(reg, world.UserProjectiles, player, &rep)
	s.shootPlayer(reg, player, &rep)
	s.penetration(reg, player, arena, &rep)
	s.shootAllies(reg, &rep)
	s.shootEnemies(reg, world.AllyProjectiles, player, &rep)
	s.outOfBounds(reg, arena, &rep)

	return rep
}

// planes: every friendly plane against every enemy plane.
func (s *System) planes(reg *world.Registry, rep *Report) {
	enemies := reg.Iter(world.Enemies)
	for _, f := range reg.Iter(world.Friendly) {
		if f.Destroyed() {
			continue
		}
		for _, e := range enemies {
			if e.Destroyed() || !f.Box().Intersects(e.Box()) {
				continue
			}
			f.TakeDamage(1, entity.CauseCollisionWithUser)
			e.TakeDamage(1, entity.CauseCollisionWithUser)
			rep.PlaneCollisions++
			break
		}
	}
}

// projectiles: friendly projectiles of partition p against enemy projectiles.
func (s *System) projectiles(reg *world.Registry, p world.Partition, rep *Report) {
	hostile := reg.Iter(world.EnemyProjectiles)
	for _, shot := range reg.Iter(p) {
		if shot.Destroyed() {
			continue
		}
		for _, h := range hostile {
			if h.Destroyed() || !shot.Box().Intersects(h.Box()) {
				continue
			}
			shot.TakeDamage(h.Payload(), entity.CauseImpact)
			h.TakeDamage(shot.Payload(), entity.CauseImpact)
			rep.ProjectileClashes++
			break
		}
	}
}

// shootEnemies: projectiles of partition p against enemy planes. Kills are
// credited to the player whichever friendly unit fired.
func (s *System) shootEnemies(reg *world.Registry, p world.Partition, player *entity.Entity, rep *Report) {
	enemies := reg.Iter(world.Enemies)
	for _, shot := range reg.Iter(p) {
		if shot.Destroyed() {
			continue
		}
		for _, e := range enemies {
			if e.Destroyed() || !shot.Box().Intersects(e.Box()) {
				continue
			}
			absorbed, killed := e.Hit(shot.Payload(), entity.CauseUserProjectile)
			shot.TakeDamage(1, entity.CauseImpact)
			rep.EnemyHits++
			if absorbed {
				rep.Absorbed++
			}
			if killed {
				rep.Kills++
				if player != nil {
					player.Kills++
				}
			}
			break
		}
	}
}

// shootPlayer: enemy projectiles against the player. Spent projectiles
// leave the registry at once.
func (s *System) shootPlayer(reg *world.Registry, player *entity.Entity, rep *Report) {
	if player == nil {
		return
	}
	for _, shot := range reg.Iter(world.EnemyProjectiles) {
		if player.Destroyed() {
			return
		}
		if shot.Destroyed() || !shot.Box().Intersects(player.Box()) {
			continue
		}
		if absorbed, _ := player.Hit(shot.Payload(), entity.CauseImpact); absorbed {
			rep.Absorbed++
		}
		shot.Destroy(entity.CauseImpact)
		reg.Evict(shot)
		rep.PlayerHits++
		rep.Evicted++
	}
}

// penetration: enemies that travelled further than the arena width.
func (s *System) penetration(reg *world.Registry, player *entity.Entity, arena core.Box, rep *Report) {
	limit := arena.Width()
	for _, e := range reg.Iter(world.Enemies) {
		if e.Destroyed() || !breached(e, limit) {
			continue
		}
		if player != nil {
			player.TakeDamage(s.penetrationDamage(), entity.CausePenetration)
		}
		e.Destroy(entity.CausePenetration)
		rep.Penetrations++
	}
}

// shootAllies: enemy projectiles against friendly planes other than the player.
func (s *System) shootAllies(reg *world.Registry, rep *Report) {
	allies := reg.Allies()
	if len(allies) == 0 {
		return
	}
	for _, shot := range reg.Iter(world.EnemyProjectiles) {
		if shot.Destroyed() {
			continue
		}
		for _, a := range allies {
			if a.Destroyed() || !shot.Box().Intersects(a.Box()) {
				continue
			}
			if absorbed, _ := a.Hit(shot.Payload(), entity.CauseImpact); absorbed {
				rep.Absorbed++
			}
			shot.TakeDamage(1, entity.CauseImpact)
			rep.AllyHits++
			break
		}
	}
}

// outOfBounds: projectiles of every faction that left the arena.
func (s *System) outOfBounds(reg *world.Registry, arena core.Box, rep *Report) {
	for _, p := range []world.Partition{world.UserProjectiles, world.EnemyProjectiles, world.AllyProjectiles} {
		for _, shot := range reg.Iter(p) {
			if shot.Destroyed() || !outside(shot.Box(), arena) {
				continue
			}
			shot.Destroy(entity.CauseOutOfBounds)
			reg.Evict(shot)
			rep.OutOfBounds++
			rep.Evicted++
		}
	}
}

func (s *System) penetrationDamage() int {
	if s.PenetrationDamage <= 0 {
		return DefaultPenetrationDamage
	}
	return s.PenetrationDamage
}

func breached(e *entity.Entity, limit float64) bool {
	tx := e.TX
	if tx < 0 {
		tx = -tx
	}
	return tx > limit
}

// outside reports whether b lies fully outside arena, in arena space.
func outside(b, arena core.Box) bool {
	return b.MaxX < arena.MinX || b.MinX > arena.MaxX ||
		b.MaxY < arena.MinY || b.MinY > arena.MaxY
}

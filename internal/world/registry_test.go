package world

import (
	"testing"

	"github.com/vovakirdan/tui-skybattle/internal/entity"
)

type recorder struct {
	placed  []uint64
	evicted []uint64
}

func (r *recorder) Place(e *entity.Entity) { r.placed = append(r.placed, e.ID) }
func (r *recorder) Evict(e *entity.Entity) { r.evicted = append(r.evicted, e.ID) }

func mk(f entity.Faction) *entity.Entity {
	return &entity.Entity{Faction: f, W: 1, H: 1, Health: 1}
}

func ids(list []*entity.Entity) []uint64 {
	out := make([]uint64, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func equal(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddPartitions(t *testing.T) {
	reg := New()
	player := mk(entity.Player)
	ally := mk(entity.Ally)
	reg.Add(player)
	reg.Add(ally)
	reg.Add(mk(entity.Enemy))
	reg.Add(mk(entity.UserProjectile))
	reg.Add(mk(entity.EnemyProjectile))
	reg.Add(mk(entity.AllyProjectile))

	tests := []struct {
		p        Partition
		expected int
	}{
		{Friendly, 2},
		{Enemies, 1},
		{UserProjectiles, 1},
		{EnemyProjectiles, 1},
		{AllyProjectiles, 1},
	}
	for _, tc := range tests {
		if got := reg.Count(tc.p); got != tc.expected {
			t.Errorf("Count(%s) = %d, expected %d", tc.p, got, tc.expected)
		}
	}
	if reg.Player() != player {
		t.Error("Player() should return the player plane")
	}
	if a := reg.Allies(); len(a) != 1 || a[0] != ally {
		t.Errorf("Allies() = %v, expected the ally", ids(a))
	}
	if player.ID == 0 || player.ID == ally.ID {
		t.Error("Add should assign distinct IDs")
	}
}

func TestRemoveDestroyedIsStable(t *testing.T) {
	rec := &recorder{}
	reg := New(WithRenderer(rec))

	var enemies []*entity.Entity
	for i := 0; i < 6; i++ {
		e := mk(entity.Enemy)
		reg.Add(e)
		enemies = append(enemies, e)
	}
	proj := mk(entity.UserProjectile)
	reg.Add(proj)
	player := mk(entity.Player)
	reg.Add(player)

	enemies[1].Destroy(entity.CauseUserProjectile)
	enemies[4].Destroy(entity.CausePenetration)
	proj.Destroy(entity.CauseUserProjectile)
	player.Destroy(entity.CauseCollisionWithUser)

	if n := reg.RemoveDestroyed(); n != 4 {
		t.Fatalf("RemoveDestroyed() = %d, expected 4", n)
	}

	want := []uint64{enemies[0].ID, enemies[2].ID, enemies[3].ID, enemies[5].ID}
	if got := ids(reg.Iter(Enemies)); !equal(got, want) {
		t.Errorf("survivors = %v, expected %v", got, want)
	}

	// Eviction follows partition order: friendly, enemies, user projectiles.
	wantEvict := []uint64{player.ID, enemies[1].ID, enemies[4].ID, proj.ID}
	if !equal(rec.evicted, wantEvict) {
		t.Errorf("evicted = %v, expected %v", rec.evicted, wantEvict)
	}
	if reg.Player() != nil {
		t.Error("swept player should be gone")
	}
}

func TestRemoveDestroyedIdempotent(t *testing.T) {
	rec := &recorder{}
	reg := New(WithRenderer(rec))
	for i := 0; i < 4; i++ {
		e := mk(entity.EnemyProjectile)
		reg.Add(e)
		if i%2 == 0 {
			e.Destroy(entity.CauseOutOfBounds)
		}
	}

	reg.RemoveDestroyed()
	before := ids(reg.Iter(EnemyProjectiles))
	evictions := len(rec.evicted)

	if n := reg.RemoveDestroyed(); n != 0 {
		t.Errorf("second RemoveDestroyed() = %d, expected 0", n)
	}
	if after := ids(reg.Iter(EnemyProjectiles)); !equal(before, after) {
		t.Errorf("second sweep changed the list: %v -> %v", before, after)
	}
	if len(rec.evicted) != evictions {
		t.Error("second sweep should not evict")
	}
}

func TestEvictDuringIteration(t *testing.T) {
	reg := New()
	var all []*entity.Entity
	for i := 0; i < 5; i++ {
		e := mk(entity.EnemyProjectile)
		reg.Add(e)
		all = append(all, e)
	}

	visited := 0
	for _, e := range reg.Iter(EnemyProjectiles) {
		visited++
		reg.Evict(e)
	}
	if visited != 5 {
		t.Errorf("visited %d entities, expected 5", visited)
	}
	if reg.Count(EnemyProjectiles) != 0 || reg.Len() != 0 {
		t.Error("all projectiles should be evicted")
	}
	if reg.Contains(all[0]) {
		t.Error("evicted entity still registered")
	}
}

func TestEvictReleasesSlot(t *testing.T) {
	reg := New()
	a, b, c := mk(entity.UserProjectile), mk(entity.UserProjectile), mk(entity.UserProjectile)
	reg.Add(a)
	reg.Add(b)
	reg.Add(c)

	reg.Evict(b)

	list := reg.lists[UserProjectiles]
	if len(list) != 2 || list[0] != a || list[1] != c {
		t.Fatalf("after Evict: %v, expected [a c]", ids(list))
	}
	// The vacated tail of the backing array must not keep c alive.
	if tail := list[:3][2]; tail != nil {
		t.Errorf("backing array still holds entity %d", tail.ID)
	}
	if reg.Contains(b) {
		t.Error("evicted entity still registered")
	}
}

func TestStrictLogicErrors(t *testing.T) {
	e := mk(entity.Enemy)

	lenient := New()
	lenient.Evict(e)
	lenient.Add(e)
	lenient.Add(e)
	if lenient.Count(Enemies) != 1 {
		t.Errorf("double add should be ignored, Count = %d", lenient.Count(Enemies))
	}

	strict := New(WithStrict(true))
	assertPanics(t, "evict absent", func() { strict.Evict(mk(entity.Enemy)) })
	strict.Add(e)
	assertPanics(t, "double add", func() { strict.Add(e) })
}

func TestUncausedHook(t *testing.T) {
	var flagged []*entity.Entity
	reg := New(WithUncausedHook(func(e *entity.Entity) { flagged = append(flagged, e) }))

	a, b := mk(entity.Enemy), mk(entity.Enemy)
	reg.Add(a)
	reg.Add(b)
	a.Destroy(entity.CauseNone)
	b.Destroy(entity.CausePenetration)
	reg.RemoveDestroyed()

	if len(flagged) != 1 || flagged[0] != a {
		t.Errorf("hook saw %d entities, expected only the uncaused one", len(flagged))
	}
}

func TestClear(t *testing.T) {
	rec := &recorder{}
	reg := New(WithRenderer(rec))
	reg.Add(mk(entity.Player))
	reg.Add(mk(entity.Enemy))
	reg.Add(mk(entity.UserProjectile))

	reg.Clear()
	if reg.Len() != 0 || len(reg.All()) != 0 {
		t.Error("Clear should remove every entity")
	}
	if len(rec.evicted) != 3 {
		t.Errorf("evicted %d, expected 3", len(rec.evicted))
	}
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

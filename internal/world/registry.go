// Package world owns the live entities of one level attempt, partitioned
// by faction.
package world

import (
	"fmt"

	"github.com/vovakirdan/tui-skybattle/internal/entity"
)

// Renderer is notified whenever an entity enters or leaves the registry.
type Renderer interface {
	Place(e *entity.Entity)
	Evict(e *entity.Entity)
}

// Partition indexes the registry lists. Players and allies share the
// friendly list.
type Partition int

const (
	Friendly Partition = iota
	Enemies
	UserProjectiles
	EnemyProjectiles
	AllyProjectiles
	numPartitions
)

// String returns a human-readable name for the partition.
func (p Partition) String() string {
	switch p {
	case Friendly:
		return "friendly"
	case Enemies:
		return "enemies"
	case UserProjectiles:
		return "user-projectiles"
	case EnemyProjectiles:
		return "enemy-projectiles"
	case AllyProjectiles:
		return "ally-projectiles"
	default:
		return "unknown"
	}
}

// PartitionOf returns the list a faction is stored in.
func PartitionOf(f entity.Faction) Partition {
	switch f {
	case entity.Enemy:
		return Enemies
	case entity.UserProjectile:
		return UserProjectiles
	case entity.EnemyProjectile:
		return EnemyProjectiles
	case entity.AllyProjectile:
		return AllyProjectiles
	default:
		return Friendly
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithRenderer sets the surface notified on place and evict.
func WithRenderer(r Renderer) Option {
	return func(reg *Registry) {
		if r != nil {
			reg.renderer = r
		}
	}
}

// WithStrict makes logic errors (double add, evicting an absent entity)
// panic instead of being ignored.
func WithStrict(strict bool) Option {
	return func(reg *Registry) {
		reg.strict = strict
	}
}

// WithUncausedHook registers fn to be called at sweep time for every
// entity destroyed without an explicit cause.
func WithUncausedHook(fn func(e *entity.Entity)) Option {
	return func(reg *Registry) {
		reg.onUncaused = fn
	}
}

// Registry is the single owner of entity lifetimes within a level.
// It is not safe for concurrent use.
type Registry struct {
	lists      [numPartitions][]*entity.Entity
	members    map[*entity.Entity]Partition
	nextID     uint64
	renderer   Renderer
	strict     bool
	onUncaused func(e *entity.Entity)
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		members:  make(map[*entity.Entity]Partition),
		renderer: nopRenderer{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add appends e to the list of its faction and places it on the renderer.
// Entities without an ID are assigned one.
func (r *Registry) Add(e *entity.Entity) {
	if e == nil {
		return
	}
	if p, ok := r.members[e]; ok {
		r.fail(fmt.Sprintf("world: entity %d already registered in %s", e.ID, p))
		return
	}
	if e.ID == 0 {
		r.nextID++
		e.ID = r.nextID
	}
	p := PartitionOf(e.Faction)
	r.lists[p] = append(r.lists[p], e)
	r.members[e] = p
	r.renderer.Place(e)
}

// Evict removes e immediately, keeping the order of the remaining entities.
func (r *Registry) Evict(e *entity.Entity) {
	if e == nil {
		return
	}
	p, ok := r.members[e]
	if !ok {
		r.fail(fmt.Sprintf("world: entity %d is not registered", e.ID))
		return
	}
	list := r.lists[p]
	for i, x := range list {
		if x == e {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			r.lists[p] = list[:len(list)-1]
			break
		}
	}
	delete(r.members, e)
	r.renderer.Evict(e)
}

// RemoveDestroyed sweeps every destroyed entity, list by list in partition
// order. Survivors keep their relative order. Returns the number removed.
func (r *Registry) RemoveDestroyed() int {
	removed := 0
	for p := Friendly; p < numPartitions; p++ {
		list := r.lists[p]
		kept := list[:0]
		var gone []*entity.Entity
		for _, e := range list {
			if e.Destroyed() {
				gone = append(gone, e)
				continue
			}
			kept = append(kept, e)
		}
		for i := len(kept); i < len(list); i++ {
			list[i] = nil
		}
		r.lists[p] = kept

		for _, e := range gone {
			delete(r.members, e)
			if e.Uncaused() && r.onUncaused != nil {
				r.onUncaused(e)
			}
			r.renderer.Evict(e)
		}
		removed += len(gone)
	}
	return removed
}

// Clear evicts every entity.
func (r *Registry) Clear() {
	for p := Friendly; p < numPartitions; p++ {
		for _, e := range r.lists[p] {
			delete(r.members, e)
			r.renderer.Evict(e)
		}
		r.lists[p] = nil
	}
}

// Count returns the number of registered entities in partition p,
// destroyed ones included until swept.
func (r *Registry) Count(p Partition) int {
	return len(r.lists[p])
}

// CountLive returns the number of entities in p that are not destroyed.
func (r *Registry) CountLive(p Partition) int {
	n := 0
	for _, e := range r.lists[p] {
		if e.Live() {
			n++
		}
	}
	return n
}

// Iter returns a snapshot of partition p. The registry may be mutated
// while ranging over it.
func (r *Registry) Iter(p Partition) []*entity.Entity {
	list := r.lists[p]
	out := make([]*entity.Entity, len(list))
	copy(out, list)
	return out
}

// Len returns the total number of registered entities.
func (r *Registry) Len() int {
	return len(r.members)
}

// Contains reports whether e is registered.
func (r *Registry) Contains(e *entity.Entity) bool {
	_, ok := r.members[e]
	return ok
}

// Player returns the player plane, or nil once it has been swept.
func (r *Registry) Player() *entity.Entity {
	for _, e := range r.lists[Friendly] {
		if e.Faction == entity.Player {
			return e
		}
	}
	return nil
}

// Allies returns the friendly planes other than the player.
func (r *Registry) Allies() []*entity.Entity {
	var out []*entity.Entity
	for _, e := range r.lists[Friendly] {
		if e.Faction == entity.Ally {
			out = append(out, e)
		}
	}
	return out
}

// All returns every registered entity in partition order.
func (r *Registry) All() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(r.members))
	for p := Friendly; p < numPartitions; p++ {
		out = append(out, r.lists[p]...)
	}
	return out
}

func (r *Registry) fail(msg string) {
	if r.strict {
		panic(msg)
	}
}

type nopRenderer struct{}

func (nopRenderer) Place(*entity.Entity) {}
func (nopRenderer) Evict(*entity.Entity) {}

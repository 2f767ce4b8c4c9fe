package level

import (
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/overlay"
)

// EntityView is a read-only copy of an entity for renderers.
type EntityView struct {
	ID       uint64         `json:"id"`
	Kind     string         `json:"kind"`
	Faction  entity.Faction `json:"faction"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	W        float64        `json:"w"`
	H        float64        `json:"h"`
	Health   int            `json:"health"`
	Shielded bool           `json:"shielded,omitempty"`
}

// Snapshot is a read-only view of an attempt.
type Snapshot struct {
	Level      string  `json:"level"`
	LevelName  string  `json:"level_name"`
	Background string  `json:"background,omitempty"`
	Tick       uint64  `json:"tick"`
	ArenaW     float64 `json:"arena_w"`
	ArenaH     float64 `json:"arena_h"`

	State     string `json:"state"`
	Countdown string `json:"countdown,omitempty"`

	Health         int     `json:"health"`
	MaxHealth      int     `json:"max_health"`
	Kills          int     `json:"kills"`
	Goal           Goal    `json:"goal"`
	KillTarget     int     `json:"kill_target,omitempty"`
	Wave           int     `json:"wave"`
	Waves          int     `json:"waves"`
	ShieldActive   bool    `json:"shield_active"`
	ShieldAbsorbed int     `json:"shield_absorbed"`
	ShieldMax      int     `json:"shield_max"`
	ShieldCharges  int     `json:"shield_charges"`
	Elapsed        float64 `json:"elapsed"`

	Entities []EntityView `json:"entities"`
	Result   *Result      `json:"result,omitempty"`

	overlay overlay.State
}

// Overlay returns the overlay state at the time of the snapshot.
func (s Snapshot) Overlay() overlay.State { return s.overlay }

// Snapshot captures the current state of the attempt.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Level:      c.def.ID,
		LevelName:  c.def.Title(),
		Background: c.def.Background,
		Tick:       c.ticks,
		ArenaW:     c.arena.Width(),
		ArenaH:     c.arena.Height(),
		State:      c.overlay.State().String(),
		Countdown:  c.overlay.CountdownLabel(),
		MaxHealth:  c.maxHealth,
		Goal:       c.def.Goal,
		KillTarget: c.def.KillTarget,
		Wave:       c.spawner.Index() + 1,
		Waves:      c.spawner.Len(),
		Elapsed:    c.clock.Seconds(),
		overlay:    c.overlay.State(),
	}
	if s.Wave > s.Waves {
		s.Wave = s.Waves
	}
	if p := c.player; p != nil {
		s.Health = p.Health
		if s.Health < 0 {
			s.Health = 0
		}
		s.Kills = p.Kills
		if sh := p.Shield; sh != nil {
			s.ShieldActive = sh.Active
			s.ShieldAbsorbed = sh.Absorbed
			s.ShieldMax = sh.Max
			s.ShieldCharges = sh.Charges
		}
	}
	if c.result != nil {
		r := *c.result
		s.Result = &r
	}

	all := c.reg.All()
	s.Entities = make([]EntityView, 0, len(all))
	for _, e := range all {
		if e.Destroyed() {
			continue
		}
		x, y := e.Position()
		s.Entities = append(s.Entities, EntityView{
			ID:       e.ID,
			Kind:     e.Kind,
			Faction:  e.Faction,
			X:        x,
			Y:        y,
			W:        e.W,
			H:        e.H,
			Health:   e.Health,
			Shielded: e.Shielded(),
		})
	}
	return s
}

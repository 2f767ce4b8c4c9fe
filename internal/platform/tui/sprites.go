package tui

import (
	"github.com/vovakirdan/tui-skybattle/internal/behavior"
	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
)

// Skin names a cosmetic glyph set.
type Skin string

const (
	SkinClassic Skin = "classic"
	SkinNeon    Skin = "neon"
)

// Skins lists the available skins in menu order.
var Skins = []Skin{SkinClassic, SkinNeon}

// PrefSkin is the preferences key holding the chosen skin.
const PrefSkin = "skin"

// ParseSkin returns the named skin, falling back to classic.
func ParseSkin(s string) Skin {
	for _, k := range Skins {
		if string(k) == s {
			return k
		}
	}
	return SkinClassic
}

// Next returns the skin after s, wrapping around.
func (s Skin) Next() Skin {
	for i, k := range Skins {
		if k == s {
			return Skins[(i+1)%len(Skins)]
		}
	}
	return SkinClassic
}

// Sprite is the drawing of an entity. Rows are repeated or clipped to the
// entity's size.
type Sprite struct {
	Rows  []string
	Color core.Color
}

var classicSprites = map[string]Sprite{
	behavior.KindPlayer:  {Rows: []string{"}=>"}, Color: core.ColorPlayer},
	behavior.KindFighter: {Rows: []string{"<=("}, Color: core.ColorEnemy},
	behavior.KindHeavy:   {Rows: []string{"<==[", "<==["}, Color: core.ColorHeavy},
	behavior.KindBoss:    {Rows: []string{" /###\\", "<[###]", " \\###/"}, Color: core.ColorBoss},
	behavior.KindAlly:    {Rows: []string{"}->"}, Color: core.ColorAlly},
	"bolt":               {Rows: []string{"-"}, Color: core.ColorShot},
	"flak":               {Rows: []string{"*"}, Color: core.ColorFlak},
	"fireball":           {Rows: []string{"@@"}, Color: core.ColorBoss},
}

var neonSprites = map[string]Sprite{
	behavior.KindPlayer: {Rows: []string{">=>"}, Color: core.ColorPlayer},
	behavior.KindAlly:   {Rows: []string{">->"}, Color: core.ColorAlly},
	"bolt":              {Rows: []string{"~"}, Color: core.ColorShot},
}

// Sprites implements world.Renderer: it picks a sprite for every entity
// placed in the registry and forgets it on eviction.
type Sprites struct {
	skin   Skin
	placed map[uint64]Sprite
}

// NewSprites creates a sprite table for the given skin.
func NewSprites(skin Skin) *Sprites {
	return &Sprites{skin: skin, placed: make(map[uint64]Sprite)}
}

// Skin returns the skin the sprites are drawn with.
func (s *Sprites) Skin() Skin { return s.skin }

// Place implements world.Renderer.
func (s *Sprites) Place(e *entity.Entity) {
	s.placed[e.ID] = s.lookup(e.Kind, e.Faction)
}

// Evict implements world.Renderer.
func (s *Sprites) Evict(e *entity.Entity) {
	delete(s.placed, e.ID)
}

// Sprite returns the sprite of an entity, or a fallback for entities that
// were never placed.
func (s *Sprites) Sprite(id uint64, kind string, f entity.Faction) Sprite {
	if sp, ok := s.placed[id]; ok {
		return sp
	}
	return s.lookup(kind, f)
}

// Len returns the number of placed entities.
func (s *Sprites) Len() int { return len(s.placed) }

// Reset forgets every placement.
func (s *Sprites) Reset() {
	clear(s.placed)
}

func (s *Sprites) lookup(kind string, f entity.Faction) Sprite {
	if s.skin == SkinNeon {
		if sp, ok := neonSprites[kind]; ok {
			return sp
		}
	}
	if sp, ok := classicSprites[kind]; ok {
		return sp
	}
	switch {
	case f.IsProjectile():
		return Sprite{Rows: []string{"."}, Color: core.ColorFlak}
	case f.Friendly():
		return Sprite{Rows: []string{"#"}, Color: core.ColorAlly}
	default:
		return Sprite{Rows: []string{"#"}, Color: core.ColorEnemy}
	}
}

package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/level"
	"github.com/vovakirdan/tui-skybattle/internal/overlay"
)

// HUDInfo is what the heads-up row shows beyond the snapshot.
type HUDInfo struct {
	Best       float64
	HasBest    bool
	Difficulty string
}

// DrawScene draws a snapshot: HUD row, background, entities and the
// active overlay.
func DrawScene(dst *core.Screen, snap level.Snapshot, sprites *Sprites, hud HUDInfo) {
	dst.Clear()
	drawBackground(dst, snap.Background)
	for _, e := range snap.Entities {
		drawEntity(dst, e, sprites)
	}
	drawHUD(dst, snap, hud)
	drawOverlay(dst, snap)
}

func drawHUD(dst *core.Screen, snap level.Snapshot, hud HUDInfo) {
	dst.ClearRow(0)

	var b strings.Builder
	fmt.Fprintf(&b, " %s ", snap.LevelName)
	fmt.Fprintf(&b, " HP %s", healthBar(snap.Health, snap.MaxHealth))

	switch snap.Goal {
	case level.GoalKills:
		fmt.Fprintf(&b, "  Kills %d/%d", snap.Kills, snap.KillTarget)
	default:
		fmt.Fprintf(&b, "  Kills %d  Wave %d/%d", snap.Kills, snap.Wave, snap.Waves)
	}

	shield := "x∞"
	if snap.ShieldActive {
		shield = fmt.Sprintf("ON %d/%d", snap.ShieldAbsorbed, snap.ShieldMax)
	} else if snap.ShieldCharges >= 0 {
		shield = fmt.Sprintf("x%d", snap.ShieldCharges)
	}
	fmt.Fprintf(&b, "  Shield %s", shield)
	fmt.Fprintf(&b, "  Time %s", FormatSeconds(snap.Elapsed))
	if hud.HasBest {
		fmt.Fprintf(&b, "  Best %s", FormatSeconds(hud.Best))
	}
	if hud.Difficulty != "" {
		fmt.Fprintf(&b, "  [%s]", hud.Difficulty)
	}

	c := core.ColorHUD
	if snap.MaxHealth > 0 && snap.Health*3 <= snap.MaxHealth {
		c = core.ColorDanger
	}
	dst.DrawTextColored(0, 0, b.String(), c)
}

func healthBar(hp, max int) string {
	if max <= 0 || max > 20 {
		return fmt.Sprintf("%d", hp)
	}
	hp = core.Clamp(hp, 0, max)
	return strings.Repeat("♥", hp) + strings.Repeat("·", max-hp)
}

func drawBackground(dst *core.Screen, bg string) {
	var r rune
	var step int
	switch bg {
	case "overcast":
		r, step = '~', 23
	case "night":
		r, step = '.', 17
	default:
		return
	}
	// Fixed pattern so the sky does not flicker between frames.
	for y := core.HUDRows; y < dst.Height(); y++ {
		for x := (y * 7) % step; x < dst.Width(); x += step {
			dst.SetColored(x, y, r, core.ColorSky)
		}
	}
}

func drawEntity(dst *core.Screen, e level.EntityView, sprites *Sprites) {
	sp := sprites.Sprite(e.ID, e.Kind, e.Faction)
	c := sp.Color
	if e.Shielded {
		c = core.ColorShield
	}

	w := max(1, int(math.Round(e.W)))
	h := max(1, int(math.Round(e.H)))
	y := int(math.Round(e.Y)) + core.HUDRows
	dst.Stamp(int(math.Round(e.X)), y, w, h, core.HUDRows, sp.Rows, c)
}

func drawOverlay(dst *core.Screen, snap level.Snapshot) {
	var lines []string
	c := core.ColorBanner

	switch snap.Overlay() {
	case overlay.None:
		return
	case overlay.Countdown:
		lines = []string{snap.LevelName, "", snap.Countdown}
	case overlay.Pause:
		lines = []string{"PAUSED", "", "P/Esc resume   Backspace leave"}
	case overlay.Exit:
		lines = []string{"Leave this level?", "", "Enter menu   R restart   N resume"}
	case overlay.Win:
		c = core.ColorVictory
		lines = []string{"MISSION COMPLETE"}
		lines = append(lines, resultLines(snap.Result)...)
		lines = append(lines, "", "Enter next   R restart   B menu")
	case overlay.GameOver:
		c = core.ColorDanger
		lines = []string{"SHOT DOWN"}
		lines = append(lines, resultLines(snap.Result)...)
		lines = append(lines, "", "R restart   B menu")
	}

	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	box := core.NewRect((dst.Width()-width-4)/2, (dst.Height()-len(lines)-2)/2, width+4, len(lines)+2)
	dst.DrawRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, c)
	for i, l := range lines {
		dst.DrawTextCentered(box.Y+1+i, l, c)
	}
}

func resultLines(r *level.Result) []string {
	if r == nil {
		return nil
	}
	lines := []string{
		"",
		fmt.Sprintf("Time %s   Kills %d", FormatSeconds(r.Elapsed), r.Kills),
	}
	switch {
	case r.NewBest:
		lines = append(lines, "NEW BEST TIME!")
	case r.HasBest:
		lines = append(lines, "Best "+FormatSeconds(r.Best))
	}
	return lines
}

// FormatSeconds renders a duration in seconds as m:ss.t.
func FormatSeconds(secs float64) string {
	if secs < 0 {
		secs = 0
	}
	tenths := int(secs*10 + 0.5)
	return fmt.Sprintf("%d:%02d.%d", tenths/600, (tenths/10)%60, tenths%10)
}

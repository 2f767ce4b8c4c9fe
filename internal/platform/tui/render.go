package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-skybattle/internal/core"
)

// Palette maps drawing roles to terminal styles.
type Palette [core.NumColors]lipgloss.Style

func newPalette(colors map[core.Color]string) Palette {
	var p Palette
	for i := range p {
		p[i] = lipgloss.NewStyle()
	}
	for role, c := range colors {
		p[role] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return p
}

var classicPalette = newPalette(map[core.Color]string{
	core.ColorHUD:     "7",
	core.ColorDanger:  "9",
	core.ColorPlayer:  "14",
	core.ColorAlly:    "2",
	core.ColorEnemy:   "1",
	core.ColorHeavy:   "208",
	core.ColorBoss:    "9",
	core.ColorShot:    "11",
	core.ColorFlak:    "208",
	core.ColorShield:  "5",
	core.ColorSky:     "245",
	core.ColorBanner:  "11",
	core.ColorVictory: "10",
})

var neonPalette = newPalette(map[core.Color]string{
	core.ColorHUD:     "51",
	core.ColorDanger:  "197",
	core.ColorPlayer:  "46",
	core.ColorAlly:    "87",
	core.ColorEnemy:   "201",
	core.ColorHeavy:   "165",
	core.ColorBoss:    "197",
	core.ColorShot:    "118",
	core.ColorFlak:    "213",
	core.ColorShield:  "231",
	core.ColorSky:     "238",
	core.ColorBanner:  "51",
	core.ColorVictory: "46",
})

// PaletteFor returns the colors of a skin.
func PaletteFor(skin Skin) *Palette {
	if skin == SkinNeon {
		return &neonPalette
	}
	return &classicPalette
}

// RenderScreen converts a Screen buffer to a styled string. Cells of the
// same role are written as one styled run.
func RenderScreen(s *core.Screen, p *Palette) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		role := core.ColorDefault
		for x := range s.Width() {
			cell := s.GetCell(x, y)
			if x > 0 && cell.Color != role {
				sb.WriteString(p.style(role).Render(run.String()))
				run.Reset()
			}
			role = cell.Color
			run.WriteRune(cell.Rune)
		}
		sb.WriteString(p.style(role).Render(run.String()))
		run.Reset()
	}
	return sb.String()
}

func (p *Palette) style(c core.Color) lipgloss.Style {
	if int(c) >= len(p) {
		return p[core.ColorDefault]
	}
	return p[c]
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

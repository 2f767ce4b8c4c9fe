package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuItem represents a selectable level in the menu.
type MenuItem struct {
	LevelID string
	Title   string
	Goal    string
	Best    float64
	HasBest bool
}

// MenuModel is the Bubble Tea model for the level picker.
type MenuModel struct {
	env       Env
	items     []MenuItem
	cursor    int
	width     int
	height    int
	skin      Skin
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem // Set when user selects a level
	openTimes bool      // True if user pressed Tab for the best-times board
}

// NewMenuModel creates a new menu model.
func NewMenuModel(env Env) MenuModel {
	levels := env.Catalog.List()
	items := make([]MenuItem, 0, len(levels))
	for _, l := range levels {
		item := MenuItem{LevelID: l.ID, Title: l.Title, Goal: l.Goal}
		if env.Store != nil {
			if best, ok, err := env.Store.BestTime(l.ID); err == nil && ok {
				item.Best, item.HasBest = best, true
			}
		}
		items = append(items, item)
	}

	return MenuModel{
		env:       env,
		items:     items,
		width:     env.Config.ScreenW,
		height:    env.Config.ScreenH,
		skin:      env.skin(),
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.env.Config.ScreenW = msg.Width
		m.env.Config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}

	case MenuActionTimes:
		m.openTimes = true

	case MenuActionSkin:
		m.skin = m.skin.Next()
		if m.env.Store != nil {
			if err := m.env.Store.SetPreference(PrefSkin, string(m.skin)); err != nil {
				m.env.logger().Warn("cannot save skin", "err", err)
			}
		}
	}

	return m, nil
}

var (
	menuTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	menuCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("  S K Y   B A T T L E  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a level", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		best := "--:--.-"
		if item.HasBest {
			best = FormatSeconds(item.Best)
		}
		line := fmt.Sprintf("%-22s %-6s %s", item.Title, item.Goal, best)
		if i == m.cursor {
			line = menuCursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	settings := fmt.Sprintf("skin: %s", m.skin)
	if d := m.env.Difficulty; d != "" {
		settings += fmt.Sprintf("   difficulty: %s", d)
	}
	b.WriteString(centerText(menuDimStyle.Render(settings), m.width))
	b.WriteString("\n\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Tab: Times  |  C: Skin  |  Q: Quit"
	b.WriteString(centerText(menuDimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsTimes returns true if user requested the best-times board.
func (m MenuModel) WantsTimes() bool {
	return m.openTimes
}

// Skin returns the skin chosen in the menu.
func (m MenuModel) Skin() Skin {
	return m.skin
}

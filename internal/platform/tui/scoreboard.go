package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-skybattle/internal/registry"
	"github.com/vovakirdan/tui-skybattle/internal/storage"
)

// Times board layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show level list sidebar
	sidebarWidth       = 24 // Width of level list sidebar
	maxAttempts        = 50 // Max attempts to load
)

// TimesKeyMap defines the key bindings for the times board.
type TimesKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextLevel key.Binding
	PrevLevel key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k TimesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextLevel, k.PrevLevel, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k TimesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextLevel, k.PrevLevel},
		{k.Back, k.Quit},
	}
}

// DefaultTimesKeyMap returns default key bindings.
func DefaultTimesKeyMap() TimesKeyMap {
	return TimesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextLevel: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next level"),
		),
		PrevLevel: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev level"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// TimesModel is the Bubble Tea model for the best-times board: the best
// time of each level and its recent attempts.
type TimesModel struct {
	levels      []registry.LevelInfo
	cursor      int
	store       *storage.Store
	best        float64
	hasBest     bool
	attempts    []storage.Attempt
	table       table.Model
	help        help.Model
	keys        TimesKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewTimesModel creates a new times board.
func NewTimesModel(catalog *registry.Catalog, store *storage.Store, width, height int) TimesModel {
	h := help.New()
	h.ShowAll = false

	m := TimesModel{
		levels:      catalog.List(),
		store:       store,
		keys:        DefaultTimesKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	if len(m.levels) > 0 {
		m.load(m.levels[0].ID)
	}
	return m
}

// createTable creates a new table with appropriate columns.
func (m *TimesModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Result", Width: 8},
		{Title: "Time", Width: 9},
		{Title: "Kills", Width: 6},
		{Title: "Date", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-9)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load reads the best time and attempts of a level.
func (m *TimesModel) load(levelID string) {
	m.best, m.hasBest, m.attempts = 0, false, nil
	if m.store != nil {
		if best, ok, err := m.store.BestTime(levelID); err == nil {
			m.best, m.hasBest = best, ok
		}
		if attempts, err := m.store.RecentAttempts(levelID, maxAttempts); err == nil {
			m.attempts = attempts
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current attempts.
func (m *TimesModel) updateTableRows() {
	rows := make([]table.Row, len(m.attempts))
	for i, a := range m.attempts {
		result := "lost"
		if a.Won {
			result = "won"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			result,
			FormatSeconds(a.Elapsed),
			fmt.Sprintf("%d", a.Kills),
			a.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the times board.
func (m TimesModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the times board.
func (m TimesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, nil

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.NextLevel):
			if len(m.levels) > 0 {
				m.cursor = (m.cursor + 1) % len(m.levels)
				m.load(m.levels[m.cursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevLevel):
			if len(m.levels) > 0 {
				m.cursor = (m.cursor - 1 + len(m.levels)) % len(m.levels)
				m.load(m.levels[m.cursor].ID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the times board.
func (m TimesModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "BEST TIMES"
	if len(m.levels) > 0 {
		best := "no win yet"
		if m.hasBest {
			best = FormatSeconds(m.best)
		}
		title = fmt.Sprintf("BEST TIMES - %s: %s", m.levels[m.cursor].Title, best)
	}
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	content := tableStyle.Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", content))
	} else {
		b.WriteString(centerText(fmt.Sprintf("< %s >", m.levelTitle()), m.width))
		b.WriteString("\n\n")
		b.WriteString(content)
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m TimesModel) renderSidebar() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Levels\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, l := range m.levels {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		name := l.Title
		if maxLen := sidebarWidth - 6; len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	return sidebarStyle.Render(sidebar.String())
}

func (m TimesModel) levelTitle() string {
	if len(m.levels) == 0 {
		return ""
	}
	return m.levels[m.cursor].Title
}

// renderTableContent renders the table or empty message.
func (m TimesModel) renderTableContent() string {
	if len(m.attempts) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No attempts recorded yet.\nFly a mission to set a time!")
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m TimesModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m TimesModel) IsQuitting() bool {
	return m.quitting
}

// RunTimes shows the times board on its own.
func RunTimes(catalog *registry.Catalog, store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		standaloneTimes{NewTimesModel(catalog, store, width, height)},
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

type standaloneTimes struct {
	TimesModel
}

func (s standaloneTimes) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := s.TimesModel.Update(msg)
	s.TimesModel = next.(TimesModel)
	if s.IsQuitting() || s.IsGoingBack() {
		return s, tea.Quit
	}
	return s, cmd
}

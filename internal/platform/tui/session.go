package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenTimes
)

// SessionModel manages a full session: menu -> game -> menu, plus the
// best-times board. It is the top-level model for SSH sessions and the
// local menu command.
type SessionModel struct {
	env      Env
	session  string
	screen   sessionScreen
	menu     MenuModel
	game     Model
	times    TimesModel
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(env Env, session string) SessionModel {
	return SessionModel{
		env:     env,
		session: session,
		menu:    NewMenuModel(env),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Every screen is rebuilt from env, so keep its size current.
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.env.Config.ScreenW = wsm.Width
		m.env.Config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenTimes:
		return m.updateTimes(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)
	m.env.Skin = m.menu.Skin()

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsTimes() {
		m.screen = screenTimes
		m.times = NewTimesModel(m.env.Catalog, m.env.Store, m.env.Config.ScreenW, m.env.Config.ScreenH)
		return m, m.times.Init()
	}

	if selected := m.menu.Selected(); selected != nil {
		def, err := m.env.Catalog.Lookup(selected.LevelID)
		if err != nil {
			// The menu only lists catalog levels.
			m.env.logger().Error("cannot start level", "level", selected.LevelID, "err", err)
			m.menu = NewMenuModel(m.env)
			return m, nil
		}
		m.screen = screenGame
		m.game = NewModel(m.env, def, m.session)
		return m, m.game.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	m.game = next.(Model)

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.game.BackToMenu() {
		return m.backToMenu()
	}

	return m, cmd
}

func (m SessionModel) updateTimes(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.times.Update(msg)
	m.times = next.(TimesModel)

	if m.times.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.times.IsGoingBack() {
		return m.backToMenu()
	}

	return m, cmd
}

// backToMenu rebuilds the menu so best times are fresh.
func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = NewMenuModel(m.env)
	return m, m.menu.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenTimes:
		return m.times.View()
	default:
		return m.menu.View()
	}
}

// InGame returns true while a level attempt is on screen.
func (m SessionModel) InGame() bool {
	return m.screen == screenGame
}

// RunSession runs the menu-driven session in the local terminal.
func RunSession(env Env) error {
	p := tea.NewProgram(
		NewSessionModel(env, "local"),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-skybattle/internal/config"
	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/level"
	"github.com/vovakirdan/tui-skybattle/internal/overlay"
	"github.com/vovakirdan/tui-skybattle/internal/registry"
	"github.com/vovakirdan/tui-skybattle/internal/storage"
)

// DefaultSteerHold is how many ticks a steering key keeps the plane
// moving. Terminals report key repeats, not releases.
const DefaultSteerHold = 6

// Env is what a host needs to run attempts. It is shared by the local
// terminal and every SSH session.
type Env struct {
	Catalog    *registry.Catalog
	Store      *storage.Store // nil runs without persistence
	Config     core.RuntimeConfig
	Difficulty config.DifficultyPreset
	Logger     *log.Logger
	Audio      level.AudioCue
	Skin       Skin // empty reads the stored preference

	// Observe returns extra observers for an attempt, e.g. metrics and the
	// spectator feed. session identifies the player.
	Observe func(session string) level.Observer

	SteerHold int
	Strict    bool
}

func (e Env) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

// skin returns the chosen skin, falling back to the stored preference.
func (e Env) skin() Skin {
	if e.Skin != "" {
		return e.Skin
	}
	if e.Store == nil {
		return SkinClassic
	}
	v, ok, err := e.Store.Preference(PrefSkin)
	if err != nil || !ok {
		return SkinClassic
	}
	return ParseSkin(v)
}

// Model is the Bubble Tea model hosting one level attempt at a time. It
// follows Advance and Restart transitions itself and reports
// ReturnToMenu through BackToMenu.
type Model struct {
	env     Env
	session string
	def     level.Definition
	ctrl    *level.Controller
	screen  *core.Screen
	sprites *Sprites
	keys    *KeyMapper
	hud     HUDInfo
	gen     int

	quitting   bool
	backToMenu bool
}

// NewModel creates a model that starts with def.
func NewModel(env Env, def level.Definition, session string) Model {
	if env.Config.TickInterval <= 0 {
		env.Config.TickInterval = core.DefaultTickInterval
	}
	if env.SteerHold == 0 {
		env.SteerHold = DefaultSteerHold
	}
	return Model{
		env:     env,
		session: session,
		def:     def,
		screen:  core.NewScreen(env.Config.ScreenW, env.Config.ScreenH),
		sprites: NewSprites(env.skin()),
		keys:    NewKeyMapper(),
	}
}

// Init schedules the first attempt. It starts in Update, where the model
// can be modified.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

type startMsg struct{}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		if m.ctrl == nil {
			return m, m.start(m.def)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		// The arena keeps its size until the next attempt.
		m.env.Config.ScreenW = msg.Width
		m.env.Config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if msg.Gen != m.gen || m.ctrl == nil {
			return m, nil
		}
		m.ctrl.Tick()
		if r, ok := m.ctrl.Result(); ok && r.HasBest {
			m.hud.Best, m.hud.HasBest = r.Best, true
		}
		return m, tickCmd(m.env.Config.TickInterval, m.gen)

	case CountdownMsg:
		if msg.Gen != m.gen || m.ctrl == nil {
			return m, nil
		}
		if _, done := m.ctrl.StepCountdown(); !done {
			return m, countdownCmd(m.gen)
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		m.close()
		return m, tea.Quit
	}
	if m.ctrl == nil {
		return m, nil
	}

	state := m.ctrl.State()
	switch state {
	case overlay.Win, overlay.GameOver, overlay.Exit:
		choice, ok := m.keys.MapChoice(state, msg)
		if !ok {
			return m, nil
		}
		t, ok := m.ctrl.Resolve(choice)
		if !ok {
			return m, nil
		}
		return m.follow(t)
	}

	m.ctrl.Handle(action)
	return m, nil
}

// follow performs a level transition.
func (m Model) follow(t level.Transition) (tea.Model, tea.Cmd) {
	switch t.Kind {
	case level.Advance, level.Restart:
		def, err := m.env.Catalog.Lookup(t.Level)
		if err != nil {
			m.env.logger().Error("cannot follow transition", "kind", t.Kind, "err", err)
			m.close()
			m.backToMenu = true
			return m, nil
		}
		return m, m.start(def)
	default:
		m.close()
		m.backToMenu = true
		return m, nil
	}
}

// start closes the current attempt and begins a new one at def. The
// returned command drives its ticks and countdown.
func (m *Model) start(def level.Definition) tea.Cmd {
	m.close()
	m.gen++
	m.def = def

	cfg := m.env.Config
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	m.sprites.Reset()

	var observers level.Observers
	deps := level.Deps{
		Renderer: m.sprites,
		Audio:    m.env.Audio,
		Logger:   m.env.logger(),
	}
	if m.env.Store != nil {
		deps.BestTimes = m.env.Store
		observers = append(observers, m.env.Store.AttemptRecorder(m.env.logger()))
	}
	if m.env.Observe != nil {
		observers = append(observers, m.env.Observe(m.session))
	}
	deps.Observer = observers

	m.ctrl = level.New(
		config.ApplyDifficulty(def, m.env.Difficulty),
		cfg,
		deps,
		level.WithSteerHold(m.env.SteerHold),
		level.WithStrict(m.env.Strict),
	)
	m.ctrl.Start()

	m.hud = HUDInfo{}
	if m.env.Difficulty != "" && m.env.Difficulty != config.DifficultyNormal {
		m.hud.Difficulty = string(m.env.Difficulty)
	}
	if m.env.Store != nil {
		if best, ok, err := m.env.Store.BestTime(def.ID); err == nil && ok {
			m.hud.Best, m.hud.HasBest = best, true
		}
	}

	return tea.Batch(tickCmd(cfg.TickInterval, m.gen), countdownCmd(m.gen))
}

func (m *Model) close() {
	if m.ctrl != nil {
		m.ctrl.Close()
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	if m.ctrl == nil {
		return
	}
	DrawScene(m.screen, m.ctrl.Snapshot(), m.sprites, m.hud)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, config.AppDir, "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.def.ID, timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.ctrl == nil {
		return ""
	}
	DrawScene(m.screen, m.ctrl.Snapshot(), m.sprites, m.hud)
	return RenderScreen(m.screen, PaletteFor(m.sprites.Skin()))
}

// Controller returns the running attempt, nil before the first message.
func (m Model) Controller() *level.Controller { return m.ctrl }

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool { return m.quitting }

// BackToMenu returns true if the attempt ended with a return to the menu.
func (m Model) BackToMenu() bool { return m.backToMenu }

// standalone quits the program when the attempt returns to the menu.
type standalone struct {
	Model
}

func (s standalone) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := s.Model.Update(msg)
	s.Model = next.(Model)
	if s.BackToMenu() {
		return s, tea.Quit
	}
	return s, cmd
}

// Run plays def in the terminal until the player quits or returns to the
// menu.
func Run(env Env, def level.Definition) error {
	p := tea.NewProgram(
		standalone{NewModel(env, def, "local")},
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"daybook/internal/config"
	"daybook/internal/tracker"
	"daybook/internal/tui/screens"
)

type Screen int

const (
	ScreenTasks Screen = iota
	ScreenHistory
	ScreenSettings
	ScreenSummary
)

type App struct {
	tracker       *tracker.Tracker
	cfg           *config.Config
	currentScreen Screen
	width         int
	height        int

	// Screen models
	tasks    *screens.Tasks
	history  *screens.History
	settings *screens.Settings
	summary  *screens.Summary
}

func NewApp(tr *tracker.Tracker, cfg *config.Config) *App {
	return &App{
		tracker:       tr,
		cfg:           cfg,
		currentScreen: ScreenTasks,
	}
}

func (a *App) Init() tea.Cmd {
	a.tasks = screens.NewTasks(a.tracker)
	a.history = screens.NewHistory(a.tracker, a.cfg)
	a.settings = screens.NewSettings(a.cfg)
	a.summary = screens.NewSummary()

	return a.tasks.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.currentScreen == ScreenTasks {
				return a, tea.Quit
			}
			// Let individual screens handle 'q' for going back
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.tasks.SetSize(msg.Width, msg.Height)
		a.history.SetSize(msg.Width, msg.Height)
		a.settings.SetSize(msg.Width, msg.Height)
		a.summary.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a.handleNavigation(msg)
	}

	// Update current screen
	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenTasks:
		cmd = a.tasks.Update(msg)
	case ScreenHistory:
		cmd = a.history.Update(msg)
	case ScreenSettings:
		cmd = a.settings.Update(msg)
	case ScreenSummary:
		cmd = a.summary.Update(msg)
	}

	return a, cmd
}

func (a *App) handleNavigation(msg screens.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Screen {
	case "tasks":
		a.currentScreen = ScreenTasks
		return a, a.tasks.Init()
	case "history":
		a.currentScreen = ScreenHistory
		return a, a.history.Init()
	case "settings":
		a.currentScreen = ScreenSettings
		return a, a.settings.Init()
	case "summary":
		a.currentScreen = ScreenSummary
		a.summary.SetSummary(msg.Summary)
		return a, a.summary.Init()
	}
	return a, nil
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenTasks:
		content = a.tasks.View()
	case ScreenHistory:
		content = a.history.View()
	case ScreenSettings:
		content = a.settings.View()
	case ScreenSummary:
		content = a.summary.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(content)
}

func Run(tr *tracker.Tracker, cfg *config.Config) error {
	app := NewApp(tr, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

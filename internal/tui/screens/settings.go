package screens

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"daybook/internal/config"
)

// Settings edits the persisted preferences.
type Settings struct {
	cfg    *config.Config
	width  int
	height int

	input   textinput.Model
	err     error
	message string
}

func NewSettings(cfg *config.Config) *Settings {
	ti := textinput.New()
	ti.Placeholder = "Minutes"
	ti.CharLimit = 4
	ti.Width = 10

	return &Settings{cfg: cfg, input: ti}
}

func (s *Settings) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *Settings) Init() tea.Cmd {
	s.message = ""
	s.err = nil
	s.input.SetValue(strconv.Itoa(s.cfg.BreakTimeMinutes))
	s.input.Focus()
	return nil
}

func (s *Settings) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			minutes, err := strconv.Atoi(strings.TrimSpace(s.input.Value()))
			if err != nil || minutes < 0 {
				s.err = fmt.Errorf("break time must be a non-negative number of minutes")
				return nil
			}
			s.cfg.BreakTimeMinutes = minutes
			if err := config.Save(s.cfg); err != nil {
				s.err = fmt.Errorf("save config: %w", err)
				return nil
			}
			s.err = nil
			s.message = "Saved."
			return nil

		case "q", "esc":
			return Navigate("tasks")
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s *Settings) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("SETTINGS"))
	b.WriteString("\n\n")

	if s.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", s.err)))
		b.WriteString("\n\n")
	}
	if s.message != "" {
		b.WriteString(SuccessStyle.Render(s.message))
		b.WriteString("\n\n")
	}

	b.WriteString("Break time (minutes):\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("[enter] Save  [esc] Back"))

	return b.String()
}

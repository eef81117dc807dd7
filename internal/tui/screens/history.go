package screens

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"daybook/internal/config"
	"daybook/internal/timeutil"
	"daybook/internal/tracker"
)

// History lists every completed time log, newest day first, with each
// closed day's break-adjusted work and other time.
type History struct {
	tracker *tracker.Tracker
	cfg     *config.Config
	width   int
	height  int

	days    []tracker.DayHistory
	loading bool
	err     error
}

func NewHistory(tr *tracker.Tracker, cfg *config.Config) *History {
	return &History{tracker: tr, cfg: cfg}
}

func (s *History) SetSize(width, height int) {
	s.width = width
	s.height = height
}

type historyDataMsg struct {
	days []tracker.DayHistory
	err  error
}

func (s *History) Init() tea.Cmd {
	s.loading = true
	return s.loadData
}

func (s *History) loadData() tea.Msg {
	breakTime := time.Duration(s.cfg.BreakTimeMinutes) * time.Minute
	days, err := s.tracker.HistoryByDay(breakTime)
	return historyDataMsg{days: days, err: err}
}

func (s *History) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case historyDataMsg:
		s.loading = false
		s.err = msg.err
		s.days = msg.days
		return nil

	case RefreshMsg:
		return s.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return Navigate("tasks")
		}
	}
	return nil
}

func (s *History) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("HISTORY"))
	b.WriteString("\n\n")

	if s.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if s.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", s.err)))
		b.WriteString("\n")
		return b.String()
	}

	if len(s.days) == 0 {
		b.WriteString(DimStyle.Render("Nothing logged yet."))
		b.WriteString("\n")
	} else {
		for i, day := range s.days {
			if i > 0 {
				b.WriteString("\n")
			}
			header := day.Date
			if day.Closed {
				header = fmt.Sprintf("%s  work %s  other %s",
					day.Date,
					timeutil.FormatDuration(day.Work),
					timeutil.FormatDuration(day.Other))
			}
			b.WriteString(SubtitleStyle.Render(header))
			b.WriteString("\n")
			for _, e := range day.Entries {
				b.WriteString(fmt.Sprintf("  %s ~ %s  %s  %s\n",
					e.StartTime.Format("15:04"),
					e.EndTime.Format("15:04"),
					NormalStyle.Render(fmt.Sprintf("%-24s", e.TaskName)),
					DimStyle.Render(timeutil.FormatDuration(e.EndTime.Sub(e.StartTime))),
				))
			}
		}
	}

	b.WriteString(HelpStyle.Render("[q] Back"))
	return b.String()
}

package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"daybook/internal/timeutil"
	"daybook/internal/tracker"
)

// Summary shows the closed day's report; the only way out is quitting.
type Summary struct {
	width   int
	height  int
	summary *tracker.Summary
}

func NewSummary() *Summary {
	return &Summary{}
}

func (s *Summary) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *Summary) SetSummary(summary *tracker.Summary) {
	s.summary = summary
}

func (s *Summary) Init() tea.Cmd {
	return nil
}

func (s *Summary) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.KeyMsg); ok {
		return tea.Quit
	}
	return nil
}

func (s *Summary) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("DAY SUMMARY"))
	b.WriteString("\n\n")

	if s.summary == nil {
		b.WriteString(DimStyle.Render("No summary available."))
		return b.String()
	}

	totals := fmt.Sprintf(
		"Total work time: %s\nTotal task time: %s\nOther time:      %s",
		timeutil.FormatDuration(s.summary.TotalWork),
		timeutil.FormatDuration(s.summary.TotalTask),
		timeutil.FormatDuration(s.summary.Other),
	)
	b.WriteString(BoxStyle.Render(totals))
	b.WriteString("\n\n")

	if len(s.summary.Lines) > 0 {
		b.WriteString(SubtitleStyle.Render("Per task"))
		b.WriteString("\n")
		for _, line := range s.summary.Lines {
			b.WriteString(fmt.Sprintf("  %-24s %s\n",
				NormalStyle.Render(line.Name),
				timeutil.FormatDuration(line.Duration)))
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("Press any key to quit"))
	return b.String()
}

package screens

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"daybook/internal/repository"
	"daybook/internal/timeutil"
	"daybook/internal/tracker"
)

type tasksMode int

const (
	tasksModeList tasksMode = iota
	tasksModeAdd
	tasksModeRename
	tasksModeDelete
	tasksModeStart
	tasksModeEnd
	tasksModeEndDay
)

// Tasks is the home screen: today's task list with per-task totals and
// interval chips, and the start/end prompts.
type Tasks struct {
	tracker *tracker.Tracker
	width   int
	height  int

	rows    []tracker.TaskRow
	cursor  int
	mode    tasksMode
	name    textinput.Model
	clock   textinput.Model
	loading bool
	err     error
	message string
}

func NewTasks(tr *tracker.Tracker) *Tasks {
	name := textinput.New()
	name.Placeholder = "Task name"
	name.CharLimit = 100
	name.Width = 40

	clock := textinput.New()
	clock.Placeholder = "HH:MM"
	clock.CharLimit = 8
	clock.Width = 10

	return &Tasks{
		tracker: tr,
		name:    name,
		clock:   clock,
	}
}

func (s *Tasks) SetSize(width, height int) {
	s.width = width
	s.height = height
}

type tasksDataMsg struct {
	rows []tracker.TaskRow
	err  error
}

func (s *Tasks) Init() tea.Cmd {
	s.loading = true
	s.mode = tasksModeList
	s.message = ""
	return s.loadData
}

func (s *Tasks) loadData() tea.Msg {
	rows, err := s.tracker.DayOverview()
	return tasksDataMsg{rows: rows, err: err}
}

func (s *Tasks) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tasksDataMsg:
		s.loading = false
		s.err = msg.err
		s.rows = msg.rows
		if s.cursor >= len(s.rows) {
			s.cursor = max(0, len(s.rows)-1)
		}
		return nil

	case RefreshMsg:
		return s.Init()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	switch s.mode {
	case tasksModeAdd, tasksModeRename:
		var cmd tea.Cmd
		s.name, cmd = s.name.Update(msg)
		return cmd
	case tasksModeStart, tasksModeEnd:
		var cmd tea.Cmd
		s.clock, cmd = s.clock.Update(msg)
		return cmd
	}

	return nil
}

func (s *Tasks) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch s.mode {
	case tasksModeList:
		return s.handleListKey(msg)
	case tasksModeAdd, tasksModeRename:
		return s.handleNameKey(msg)
	case tasksModeDelete:
		return s.handleDeleteKey(msg)
	case tasksModeStart, tasksModeEnd:
		return s.handleClockKey(msg)
	case tasksModeEndDay:
		return s.handleEndDayKey(msg)
	}
	return nil
}

func (s *Tasks) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.rows)-1 {
			s.cursor++
		}
	case "a":
		s.mode = tasksModeAdd
		s.name.SetValue("")
		s.name.Focus()
		return nil
	case "e":
		if len(s.rows) > 0 {
			if s.tracker.State().Active != nil {
				s.message = ""
				s.err = errors.New("stop the running task before renaming")
				return nil
			}
			s.mode = tasksModeRename
			s.name.SetValue(s.rows[s.cursor].Task.Name)
			s.name.Focus()
		}
	case "d":
		if len(s.rows) > 0 {
			s.mode = tasksModeDelete
		}
	case "enter", " ":
		if len(s.rows) == 0 {
			return nil
		}
		row := s.rows[s.cursor]
		if row.Measuring {
			s.mode = tasksModeEnd
		} else if s.tracker.State().Active != nil {
			s.err = errors.New("another task is running, end it first")
			return nil
		} else {
			s.mode = tasksModeStart
		}
		s.clock.SetValue(s.tracker.Now().Format("15:04"))
		s.clock.Focus()
		return nil
	case "E":
		if s.tracker.State().Active != nil {
			s.err = errors.New("a task is still being timed, end it first")
			return nil
		}
		s.mode = tasksModeEndDay
	case "h":
		return Navigate("history")
	case "s":
		return Navigate("settings")
	}
	return nil
}

func (s *Tasks) handleNameKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(s.name.Value())
		if name == "" {
			s.mode = tasksModeList
			return nil
		}

		if s.mode == tasksModeAdd {
			_, err := s.tracker.AddTask(name)
			if errors.Is(err, repository.ErrDuplicateName) {
				s.err = fmt.Errorf("task %q already exists", name)
			} else if err != nil {
				s.err = err
			} else {
				s.message = fmt.Sprintf("Added task: %s", name)
			}
		} else {
			err := s.tracker.RenameTask(s.rows[s.cursor].Task.ID, name)
			if errors.Is(err, repository.ErrDuplicateName) {
				s.err = fmt.Errorf("task %q already exists", name)
			} else if err != nil {
				s.err = err
			} else {
				s.message = fmt.Sprintf("Renamed task: %s", name)
			}
		}
		s.mode = tasksModeList
		s.name.Blur()
		return s.loadData

	case "esc":
		s.mode = tasksModeList
		s.name.Blur()
		return nil
	}

	var cmd tea.Cmd
	s.name, cmd = s.name.Update(msg)
	return cmd
}

func (s *Tasks) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		name := s.rows[s.cursor].Task.Name
		if err := s.tracker.DeleteTask(s.rows[s.cursor].Task.ID); err != nil {
			s.err = err
		} else {
			s.message = fmt.Sprintf("Deleted task: %s", name)
		}
		s.mode = tasksModeList
		return s.loadData

	case "n", "N", "esc":
		s.mode = tasksModeList
	}
	return nil
}

func (s *Tasks) handleClockKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		ts, err := timeutil.ParseClock(s.clock.Value(), s.tracker.Now())
		if err != nil {
			s.err = err
			return nil
		}

		row := s.rows[s.cursor]
		if s.mode == tasksModeStart {
			if err := s.tracker.StartTask(row.Task.ID, ts); err != nil {
				s.err = err
			} else {
				s.message = fmt.Sprintf("Started: %s", row.Task.Name)
			}
		} else {
			if err := s.tracker.EndTask(ts); err != nil {
				s.err = err
			} else {
				s.message = fmt.Sprintf("Ended: %s", row.Task.Name)
			}
		}
		s.mode = tasksModeList
		s.clock.Blur()
		return s.loadData

	case "esc":
		// Cancelled prompt: no store is touched.
		s.mode = tasksModeList
		s.clock.Blur()
		return nil
	}

	var cmd tea.Cmd
	s.clock, cmd = s.clock.Update(msg)
	return cmd
}

func (s *Tasks) handleEndDayKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		summary, err := s.tracker.EndDay(s.tracker.Now())
		if err != nil {
			s.err = err
			s.mode = tasksModeList
			return nil
		}
		s.mode = tasksModeList
		return NavigateToSummary(summary)

	case "n", "N", "esc":
		s.mode = tasksModeList
	}
	return nil
}

func (s *Tasks) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("DAYBOOK"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(
		fmt.Sprintf("Business start: %s", s.tracker.State().BusinessStart.Format("15:04:05"))))
	b.WriteString("\n\n")

	if s.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if s.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", s.err)))
		b.WriteString("\n\n")
		s.err = nil
	}

	if s.message != "" {
		b.WriteString(SuccessStyle.Render(s.message))
		b.WriteString("\n\n")
	}

	switch s.mode {
	case tasksModeAdd:
		b.WriteString("New task name:\n")
		b.WriteString(s.name.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()

	case tasksModeRename:
		b.WriteString("Edit task name:\n")
		b.WriteString(s.name.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()

	case tasksModeDelete:
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Delete task '%s' and all its logged time? (y/n)",
			s.rows[s.cursor].Task.Name,
		)))
		b.WriteString("\n")
		return b.String()

	case tasksModeStart:
		b.WriteString(fmt.Sprintf("Start '%s' at:\n", s.rows[s.cursor].Task.Name))
		b.WriteString(s.clock.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Start  [esc] Cancel"))
		return b.String()

	case tasksModeEnd:
		b.WriteString(fmt.Sprintf("End '%s' at:\n", s.rows[s.cursor].Task.Name))
		b.WriteString(s.clock.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] End  [esc] Cancel"))
		return b.String()

	case tasksModeEndDay:
		b.WriteString(WarningStyle.Render("End the business day? (y/n)"))
		b.WriteString("\n")
		return b.String()
	}

	if len(s.rows) == 0 {
		b.WriteString(DimStyle.Render("No tasks yet. Press 'a' to add one."))
		b.WriteString("\n\n")
	} else {
		for i, row := range s.rows {
			cursor := "  "
			style := NormalStyle
			if i == s.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			status := ""
			if row.Measuring {
				status = MeasuringStyle.Render(" [measuring]")
			}

			line := fmt.Sprintf("%s%-24s %s", cursor, row.Task.Name, timeutil.FormatDuration(row.Total))
			b.WriteString(style.Render(line))
			b.WriteString(status)
			if len(row.Spans) > 0 {
				b.WriteString(DimStyle.Render("  " + strings.Join(row.Spans, ", ")))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	help := "[enter] Start/End  [a] Add  [e] Rename  [d] Delete  [E] End day  [h] History  [s] Settings  [q] Quit"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

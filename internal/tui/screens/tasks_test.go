package screens

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"daybook/internal/db"
	"daybook/internal/session"
	"daybook/internal/tracker"
)

func newTestTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	dir := t.TempDir()

	database, err := db.OpenFile(filepath.Join(dir, "daybook.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tr := tracker.New(database, session.NewStore(filepath.Join(dir, "session.json")))
	tr.Now = func() time.Time { return time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC) }
	if err := tr.Open(); err != nil {
		t.Fatalf("open tracker: %v", err)
	}
	return tr
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// run executes a command and feeds its message back, like the bubbletea
// runtime would.
func (s *Tasks) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		s.Update(msg)
	}
}

func TestTasksAddPromptReceivesTypedText(t *testing.T) {
	tr := newTestTracker(t)
	s := NewTasks(tr)
	s.run(s.Init())

	s.Update(keyRune('a'))
	// "Dev" contains rename and delete hotkeys; in add mode they must be
	// treated as text, not commands.
	for _, r := range "Dev" {
		s.Update(keyRune(r))
	}
	if got := s.name.Value(); got != "Dev" {
		t.Fatalf("typed text = %q, want %q", got, "Dev")
	}
	if s.mode != tasksModeAdd {
		t.Fatalf("mode = %v, typing must stay in the add prompt", s.mode)
	}

	s.run(s.Update(tea.KeyMsg{Type: tea.KeyEnter}))

	if s.mode != tasksModeList {
		t.Fatalf("mode after enter = %v", s.mode)
	}
	if len(s.rows) != 1 || s.rows[0].Task.Name != "Dev" {
		t.Fatalf("rows after add = %+v", s.rows)
	}
}

func TestTasksRenamePromptIsEditable(t *testing.T) {
	tr := newTestTracker(t)
	if _, err := tr.AddTask("Design"); err != nil {
		t.Fatal(err)
	}

	s := NewTasks(tr)
	s.run(s.Init())

	s.Update(keyRune('e'))
	if s.mode != tasksModeRename {
		t.Fatalf("mode = %v", s.mode)
	}
	if got := s.name.Value(); got != "Design" {
		t.Fatalf("prefill = %q", got)
	}

	for _, r := range "er" {
		s.Update(keyRune(r))
	}
	if got := s.name.Value(); got != "Designer" {
		t.Fatalf("edited name = %q", got)
	}

	s.run(s.Update(tea.KeyMsg{Type: tea.KeyEnter}))
	if len(s.rows) != 1 || s.rows[0].Task.Name != "Designer" {
		t.Fatalf("rows after rename = %+v", s.rows)
	}
}

func TestTasksClockPromptIsEditable(t *testing.T) {
	tr := newTestTracker(t)
	if _, err := tr.AddTask("Design"); err != nil {
		t.Fatal(err)
	}

	s := NewTasks(tr)
	s.run(s.Init())

	s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if s.mode != tasksModeStart {
		t.Fatalf("mode = %v", s.mode)
	}
	if got := s.clock.Value(); got != "08:30" {
		t.Fatalf("prefill = %q", got)
	}

	// Rewrite the minutes.
	s.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	s.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	s.Update(keyRune('4'))
	s.Update(keyRune('5'))
	if got := s.clock.Value(); got != "08:45" {
		t.Fatalf("edited clock = %q", got)
	}

	s.run(s.Update(tea.KeyMsg{Type: tea.KeyEnter}))

	state := tr.State()
	if state.Active == nil || state.Active.TaskName != "Design" {
		t.Fatalf("active = %+v", state.Active)
	}
	if got := state.Active.StartedAt.Format("15:04"); got != "08:45" {
		t.Fatalf("started at %s, want the edited time", got)
	}
}

func TestTasksClockPromptEscCancels(t *testing.T) {
	tr := newTestTracker(t)
	if _, err := tr.AddTask("Design"); err != nil {
		t.Fatal(err)
	}

	s := NewTasks(tr)
	s.run(s.Init())

	s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	s.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if s.mode != tasksModeList {
		t.Fatalf("mode after esc = %v", s.mode)
	}
	if tr.State().Active != nil {
		t.Fatal("cancelled prompt must not start the task")
	}
}

func TestTasksViewShowsTypedText(t *testing.T) {
	tr := newTestTracker(t)
	s := NewTasks(tr)
	s.run(s.Init())

	s.Update(keyRune('a'))
	for _, r := range "Rev" {
		s.Update(keyRune(r))
	}
	if view := s.View(); !strings.Contains(view, "Rev") {
		t.Fatalf("view does not echo the typed name:\n%s", view)
	}
}

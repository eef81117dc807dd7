package tracker_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"daybook/internal/db"
	"daybook/internal/models"
	"daybook/internal/session"
	"daybook/internal/timeutil"
	"daybook/internal/tracker"
)

var testNow = time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

type testEnv struct {
	Tracker *tracker.Tracker
	Store   *session.Store
	DBPath  string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "daybook.sqlite")

	database, err := db.OpenFile(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := session.NewStore(filepath.Join(dir, "session.json"))
	tr := tracker.New(database, store)
	tr.Now = func() time.Time { return testNow }

	return testEnv{Tracker: tr, Store: store, DBPath: dbPath}
}

// reopen builds a second tracker over the same database and snapshot file,
// simulating a process restart.
func (env testEnv) reopen(t *testing.T) *tracker.Tracker {
	t.Helper()
	database, err := db.OpenFile(env.DBPath)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	tr := tracker.New(database, env.Store)
	tr.Now = func() time.Time { return testNow }
	return tr
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 10, hour, minute, 0, 0, time.UTC)
}

func TestOpenStampsBusinessStartAndSnapshot(t *testing.T) {
	env := newTestEnv(t)

	if err := env.Tracker.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}

	state := env.Tracker.State()
	if state.Date != "2024-05-10" {
		t.Errorf("date = %s", state.Date)
	}
	if !state.BusinessStart.Equal(testNow) {
		t.Errorf("business start = %v, want %v", state.BusinessStart, testNow)
	}
	if state.Active != nil {
		t.Errorf("fresh day should have no active task")
	}

	snap, err := env.Store.Load()
	if err != nil || snap == nil {
		t.Fatalf("snapshot after open: %v, %v", snap, err)
	}
	if snap.WorkDayID != state.WorkDayID || !snap.BusinessStart.Equal(testNow) {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestRestartResumesRunningTask(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	task, err := env.Tracker.AddTask("Design")
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.StartTask(task.ID, at(9, 0)); err != nil {
		t.Fatalf("start: %v", err)
	}

	resumed := env.reopen(t)
	if err := resumed.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}

	state := resumed.State()
	if state.Active == nil {
		t.Fatal("running task lost across restart")
	}
	if state.Active.TaskID != task.ID || state.Active.TaskName != "Design" {
		t.Errorf("resumed wrong task: %+v", state.Active)
	}
	if !state.Active.StartedAt.Equal(at(9, 0)) {
		t.Errorf("resumed start = %v", state.Active.StartedAt)
	}

	// The resumed session can end the log it did not start.
	if err := resumed.EndTask(at(10, 0)); err != nil {
		t.Fatalf("end after resume: %v", err)
	}
}

func TestStaleSnapshotDiscardedEntirely(t *testing.T) {
	env := newTestEnv(t)

	// Syntactically valid snapshot for some other work day.
	err := env.Store.Save(models.Snapshot{
		WorkDayID:     999,
		BusinessStart: at(7, 0),
		Active: &models.ActiveTask{
			TaskID:    1,
			TaskName:  "Yesterday",
			StartedAt: at(7, 30),
			LogID:     4,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	state := env.Tracker.State()
	if state.Active != nil {
		t.Errorf("stale active task adopted: %+v", state.Active)
	}
	if !state.BusinessStart.Equal(testNow) {
		t.Errorf("stale business start adopted: %v", state.BusinessStart)
	}
}

func TestSecondStartRejected(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	x, _ := env.Tracker.AddTask("Task X")
	y, _ := env.Tracker.AddTask("Task Y")

	if err := env.Tracker.StartTask(x.ID, at(9, 0)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.StartTask(y.ID, at(9, 30)); !errors.Is(err, tracker.ErrTaskActive) {
		t.Fatalf("second start: got %v, want ErrTaskActive", err)
	}

	state := env.Tracker.State()
	if state.Active == nil || state.Active.TaskID != x.ID {
		t.Errorf("active task should remain X: %+v", state.Active)
	}
}

func TestAtMostOneOpenLog(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	a, _ := env.Tracker.AddTask("A")
	b, _ := env.Tracker.AddTask("B")

	countOpen := func() int {
		t.Helper()
		open := 0
		for _, task := range []int64{a.ID, b.ID} {
			logs, err := env.Tracker.Logs.GetForTaskOnDay(env.Tracker.State().WorkDayID, task)
			if err != nil {
				t.Fatal(err)
			}
			for _, log := range logs {
				if log.EndTime == nil {
					open++
				}
			}
		}
		return open
	}

	steps := []func() error{
		func() error { return env.Tracker.StartTask(a.ID, at(9, 0)) },
		func() error { return env.Tracker.StartTask(b.ID, at(9, 10)) }, // rejected
		func() error { return env.Tracker.EndTask(at(9, 30)) },
		func() error { return env.Tracker.StartTask(b.ID, at(9, 40)) },
		func() error { return env.Tracker.EndTask(at(10, 0)) },
		func() error { return env.Tracker.StartTask(a.ID, at(10, 15)) },
	}
	for i, step := range steps {
		_ = step()
		if n := countOpen(); n > 1 {
			t.Fatalf("after step %d: %d open logs", i, n)
		}
	}
}

func TestEndWithoutActiveTask(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	if err := env.Tracker.EndTask(at(10, 0)); !errors.Is(err, tracker.ErrNoActiveTask) {
		t.Errorf("got %v, want ErrNoActiveTask", err)
	}
}

func TestCancelledTimestampsAreNoOps(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	task, _ := env.Tracker.AddTask("Design")

	// Cancelled start dialog: zero timestamp, no mutation.
	if err := env.Tracker.StartTask(task.ID, time.Time{}); err != nil {
		t.Fatalf("cancelled start: %v", err)
	}
	if env.Tracker.State().Active != nil {
		t.Error("cancelled start activated a task")
	}
	logs, err := env.Tracker.Logs.GetForTaskOnDay(env.Tracker.State().WorkDayID, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 0 {
		t.Errorf("cancelled start wrote %d logs", len(logs))
	}

	// Cancelled end dialog: task keeps running.
	if err := env.Tracker.StartTask(task.ID, at(9, 0)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.EndTask(time.Time{}); err != nil {
		t.Fatalf("cancelled end: %v", err)
	}
	if env.Tracker.State().Active == nil {
		t.Error("cancelled end stopped the task")
	}
}

func TestEndBeforeStartRejected(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	task, _ := env.Tracker.AddTask("Design")
	if err := env.Tracker.StartTask(task.ID, at(10, 0)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.EndTask(at(9, 0)); !errors.Is(err, tracker.ErrEndBeforeStart) {
		t.Errorf("got %v, want ErrEndBeforeStart", err)
	}
}

func TestEndDayWritesEndAndClearsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	summary, err := env.Tracker.EndDay(at(17, 0))
	if err != nil {
		t.Fatalf("end day: %v", err)
	}
	if summary == nil {
		t.Fatal("expected summary")
	}

	day, err := env.Tracker.WorkDays.GetByID(env.Tracker.State().WorkDayID)
	if err != nil {
		t.Fatal(err)
	}
	if day.EndTime == nil || !day.EndTime.Equal(at(17, 0)) {
		t.Errorf("work day end = %v", day.EndTime)
	}

	if snap, _ := env.Store.Load(); snap != nil {
		t.Error("snapshot should be cleared after the day ends")
	}
}

func TestRenameAndDeleteGuardedWhileMeasuring(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	task, _ := env.Tracker.AddTask("Design")
	other, _ := env.Tracker.AddTask("Review")
	if err := env.Tracker.StartTask(task.ID, at(9, 0)); err != nil {
		t.Fatal(err)
	}

	if err := env.Tracker.RenameTask(other.ID, "Rework"); !errors.Is(err, tracker.ErrTaskActive) {
		t.Errorf("rename while measuring: got %v", err)
	}
	if err := env.Tracker.DeleteTask(task.ID); !errors.Is(err, tracker.ErrTaskActive) {
		t.Errorf("delete running task: got %v", err)
	}
	// Deleting an idle task is allowed.
	if err := env.Tracker.DeleteTask(other.ID); err != nil {
		t.Errorf("delete idle task: %v", err)
	}
}

func TestSummaryEmptyDay(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	summary, err := env.Tracker.Summarize(env.Tracker.State().WorkDayID, at(9, 0), at(17, 0))
	if err != nil {
		t.Fatal(err)
	}
	if got := timeutil.FormatDuration(summary.TotalWork); got != "08:00:00" {
		t.Errorf("total work = %s", got)
	}
	if got := timeutil.FormatDuration(summary.TotalTask); got != "00:00:00" {
		t.Errorf("total task = %s", got)
	}
	if got := timeutil.FormatDuration(summary.Other); got != "08:00:00" {
		t.Errorf("other = %s", got)
	}
	if len(summary.Lines) != 0 {
		t.Errorf("lines = %+v", summary.Lines)
	}
}

func TestSummaryMultipleIntervalsSummed(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	design, _ := env.Tracker.AddTask("Design")
	if err := env.Tracker.StartTask(design.ID, at(9, 0)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.EndTask(at(10, 30)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.StartTask(design.ID, at(13, 0)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.EndTask(at(14, 0)); err != nil {
		t.Fatal(err)
	}

	summary, err := env.Tracker.Summarize(env.Tracker.State().WorkDayID, at(9, 0), at(17, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Lines) != 1 {
		t.Fatalf("lines = %+v, want one summed entry", summary.Lines)
	}
	if got := timeutil.FormatDuration(summary.Lines[0].Duration); got != "02:30:00" {
		t.Errorf("Design total = %s", got)
	}
	if got := timeutil.FormatDuration(summary.Other); got != "05:30:00" {
		t.Errorf("other = %s", got)
	}
	if summary.TotalTask != summary.Lines[0].Duration {
		t.Error("sum of lines must equal total task time")
	}
}

func TestSummaryLinesSortedAndExact(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	zulu, _ := env.Tracker.AddTask("Zulu")
	alpha, _ := env.Tracker.AddTask("Alpha")

	run := func(id int64, from, to time.Time) {
		t.Helper()
		if err := env.Tracker.StartTask(id, from); err != nil {
			t.Fatal(err)
		}
		if err := env.Tracker.EndTask(to); err != nil {
			t.Fatal(err)
		}
	}
	run(zulu.ID, at(9, 0), at(10, 0))
	run(alpha.ID, at(10, 0), at(11, 15))

	summary, err := env.Tracker.Summarize(env.Tracker.State().WorkDayID, at(9, 0), at(17, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Lines) != 2 || summary.Lines[0].Name != "Alpha" || summary.Lines[1].Name != "Zulu" {
		t.Errorf("lines not sorted by name: %+v", summary.Lines)
	}

	var sum time.Duration
	for _, line := range summary.Lines {
		sum += line.Duration
	}
	if sum != summary.TotalTask {
		t.Errorf("sum of lines %v != total task %v", sum, summary.TotalTask)
	}
}

func TestSummaryNegativeOtherNotClamped(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	task, _ := env.Tracker.AddTask("Overrun")
	if err := env.Tracker.StartTask(task.ID, at(9, 0)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.EndTask(at(19, 0)); err != nil {
		t.Fatal(err)
	}

	summary, err := env.Tracker.Summarize(env.Tracker.State().WorkDayID, at(9, 0), at(17, 0))
	if err != nil {
		t.Fatal(err)
	}
	if summary.Other >= 0 {
		t.Fatalf("other = %v, want negative", summary.Other)
	}
	if got := timeutil.FormatDuration(summary.Other); got != "-02:00:00" {
		t.Errorf("other = %s, want -02:00:00", got)
	}
}

func TestHistoryByDayBreakAdjusted(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	design, _ := env.Tracker.AddTask("Design")
	if err := env.Tracker.StartTask(design.ID, at(9, 0)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.EndTask(at(10, 30)); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Tracker.EndDay(at(17, 0)); err != nil {
		t.Fatal(err)
	}

	days, err := env.Tracker.HistoryByDay(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 {
		t.Fatalf("days = %d", len(days))
	}

	day := days[0]
	if day.Date != "2024-05-10" || !day.Closed {
		t.Fatalf("day = %+v", day)
	}
	if len(day.Entries) != 1 || day.Entries[0].TaskName != "Design" {
		t.Fatalf("entries = %+v", day.Entries)
	}
	// Window 08:30 to 17:00 minus a one-hour break.
	if got := timeutil.FormatDuration(day.Work); got != "07:30:00" {
		t.Errorf("net work = %s", got)
	}
	if got := timeutil.FormatDuration(day.Tasks); got != "01:30:00" {
		t.Errorf("task time = %s", got)
	}
	if got := timeutil.FormatDuration(day.Other); got != "06:00:00" {
		t.Errorf("other = %s", got)
	}
}

func TestHistoryByDayOpenDayHasNoTotals(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	design, _ := env.Tracker.AddTask("Design")
	if err := env.Tracker.StartTask(design.ID, at(9, 0)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.EndTask(at(10, 0)); err != nil {
		t.Fatal(err)
	}

	days, err := env.Tracker.HistoryByDay(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 {
		t.Fatalf("days = %d", len(days))
	}
	if days[0].Closed {
		t.Error("a day without a business end must not be closed")
	}
	if days[0].Work != 0 || days[0].Other != 0 {
		t.Errorf("open day carries totals: %+v", days[0])
	}
	if days[0].Tasks != time.Hour {
		t.Errorf("task time = %v", days[0].Tasks)
	}
}

func TestDayOverview(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Tracker.Open(); err != nil {
		t.Fatal(err)
	}

	design, _ := env.Tracker.AddTask("Design")
	review, _ := env.Tracker.AddTask("Review")

	if err := env.Tracker.StartTask(design.ID, at(9, 0)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.EndTask(at(10, 30)); err != nil {
		t.Fatal(err)
	}
	if err := env.Tracker.StartTask(review.ID, at(11, 0)); err != nil {
		t.Fatal(err)
	}

	rows, err := env.Tracker.DayOverview()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Task.Name != "Design" || rows[0].Total != 90*time.Minute {
		t.Errorf("design row = %+v", rows[0])
	}
	// Spans render in local wall time, whatever that is on this machine.
	wantSpan := at(9, 0).Local().Format("15:04") + "~" + at(10, 30).Local().Format("15:04")
	if len(rows[0].Spans) != 1 || rows[0].Spans[0] != wantSpan {
		t.Errorf("design spans = %v, want [%s]", rows[0].Spans, wantSpan)
	}
	if !rows[1].Measuring {
		t.Error("review should be measuring")
	}
	if rows[1].Total != 0 {
		t.Errorf("open interval must not count yet: %v", rows[1].Total)
	}
}

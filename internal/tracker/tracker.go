// Package tracker owns the in-memory state of the current work session and
// reconciles it at startup from the database (history) and the session
// snapshot (whatever was running when the process last stopped).
package tracker

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daybook/internal/models"
	"daybook/internal/repository"
	"daybook/internal/session"
)

var (
	ErrTaskActive     = errors.New("another task is being timed")
	ErrNoActiveTask   = errors.New("no task is being timed")
	ErrEndBeforeStart = errors.New("end time is before start time")
)

// State is today's session: populated by Open, mutated by the start/end
// operations, thrown away at process exit.
type State struct {
	Date          string
	WorkDayID     int64
	BusinessStart time.Time
	BusinessEnd   time.Time
	Active        *models.ActiveTask
}

type Tracker struct {
	WorkDays *repository.WorkDayRepo
	Tasks    *repository.TaskRepo
	Logs     *repository.TimeLogRepo

	Snapshots *session.Store

	// Now is replaceable in tests.
	Now func() time.Time

	state State
}

func New(db *sql.DB, snapshots *session.Store) *Tracker {
	return &Tracker{
		WorkDays:  repository.NewWorkDayRepo(db),
		Tasks:     repository.NewTaskRepo(db),
		Logs:      repository.NewTimeLogRepo(db),
		Snapshots: snapshots,
		Now:       time.Now,
	}
}

func (t *Tracker) State() State {
	return t.state
}

// Open runs the startup protocol: fetch or create today's work day, adopt
// the snapshot only when it belongs to that same day, and stamp the
// business start on first launch of the day.
func (t *Tracker) Open() error {
	date := t.Now().Format(models.DateLayout)

	day, err := t.WorkDays.GetOrCreate(date)
	if err != nil {
		return fmt.Errorf("get or create work day: %w", err)
	}

	t.state = State{Date: date, WorkDayID: day.ID}

	// A snapshot keyed to a different work day is stale. Discard it whole;
	// partially merging yesterday's session would be worse than losing it.
	snap, _ := t.Snapshots.Load()
	if snap != nil && snap.WorkDayID == day.ID {
		t.state.BusinessStart = snap.BusinessStart
		t.state.Active = snap.Active
	}

	if t.state.BusinessStart.IsZero() {
		t.state.BusinessStart = t.Now()
		if err := t.WorkDays.SetStartTime(day.ID, t.state.BusinessStart); err != nil {
			return fmt.Errorf("set business start: %w", err)
		}
		t.saveSnapshot()
	}

	return nil
}

// StartTask opens a time log for the task. A zero timestamp means the user
// cancelled the prompt; nothing is written.
func (t *Tracker) StartTask(taskID int64, start time.Time) error {
	if start.IsZero() {
		return nil
	}
	if t.state.Active != nil {
		return ErrTaskActive
	}

	task, err := t.Tasks.GetByID(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return repository.ErrNotFound
	}

	logID, err := t.Logs.Start(t.state.WorkDayID, taskID, start)
	if err != nil {
		return fmt.Errorf("start time log: %w", err)
	}

	t.state.Active = &models.ActiveTask{
		TaskID:    task.ID,
		TaskName:  task.Name,
		StartedAt: start,
		LogID:     logID,
	}
	t.saveSnapshot()
	return nil
}

// EndTask closes the running time log. A zero timestamp means the prompt
// was cancelled; the task keeps running.
func (t *Tracker) EndTask(end time.Time) error {
	if end.IsZero() {
		return nil
	}
	if t.state.Active == nil {
		return ErrNoActiveTask
	}
	if end.Before(t.state.Active.StartedAt) {
		return ErrEndBeforeStart
	}

	if err := t.Logs.End(t.state.Active.LogID, end); err != nil {
		return fmt.Errorf("end time log: %w", err)
	}

	t.state.Active = nil
	t.saveSnapshot()
	return nil
}

// EndDay stamps the business end, builds the day's summary and clears the
// snapshot; the session is over.
func (t *Tracker) EndDay(end time.Time) (*Summary, error) {
	if end.IsZero() {
		return nil, nil
	}

	if err := t.WorkDays.SetEndTime(t.state.WorkDayID, end); err != nil {
		return nil, fmt.Errorf("set business end: %w", err)
	}
	t.state.BusinessEnd = end

	summary, err := t.Summarize(t.state.WorkDayID, t.state.BusinessStart, end)
	if err != nil {
		return nil, err
	}

	if err := t.Snapshots.Clear(); err != nil {
		// The stale file is keyed to today's work day id and would be
		// discarded tomorrow anyway.
		return summary, nil
	}
	return summary, nil
}

// AddTask registers a new named task.
func (t *Tracker) AddTask(name string) (*models.Task, error) {
	return t.Tasks.Create(name)
}

// RenameTask is refused while a task is being timed, matching the rule
// that the list is frozen during measurement.
func (t *Tracker) RenameTask(id int64, name string) error {
	if t.state.Active != nil {
		return ErrTaskActive
	}
	return t.Tasks.Rename(id, name)
}

// DeleteTask removes a task and its logs. The running task cannot be
// deleted out from under the session.
func (t *Tracker) DeleteTask(id int64) error {
	if t.state.Active != nil && t.state.Active.TaskID == id {
		return ErrTaskActive
	}
	return t.Tasks.Delete(id)
}

// saveSnapshot rewrites the side file after a state change. A write
// failure only costs crash recovery, so the session carries on.
func (t *Tracker) saveSnapshot() {
	_ = t.Snapshots.Save(models.Snapshot{
		WorkDayID:     t.state.WorkDayID,
		BusinessStart: t.state.BusinessStart,
		Active:        t.state.Active,
	})
}

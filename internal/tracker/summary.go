package tracker

import (
	"sort"
	"time"

	"daybook/internal/models"
)

// TaskLine is one task's summed duration for the day.
type TaskLine struct {
	Name     string
	Duration time.Duration
}

// Summary is the day's report. Other is signed and never clamped: a
// negative value means recorded intervals overlap or exceed the business
// window, and hiding that would mask the bug that caused it.
type Summary struct {
	TotalWork time.Duration
	TotalTask time.Duration
	Other     time.Duration
	Lines     []TaskLine
}

// Summarize reduces a day's completed intervals into per-task totals and
// the residual "other" time of the business window.
func (t *Tracker) Summarize(workDayID int64, businessStart, businessEnd time.Time) (*Summary, error) {
	logs, err := t.Logs.GetCompletedForDay(workDayID)
	if err != nil {
		return nil, err
	}

	tasks, err := t.Tasks.GetAll()
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(tasks))
	for _, task := range tasks {
		names[task.ID] = task.Name
	}

	var totalTask time.Duration
	perTask := map[int64]time.Duration{}
	for _, log := range logs {
		duration := log.EndTime.Sub(log.StartTime)
		totalTask += duration
		perTask[log.TaskID] += duration
	}

	summary := &Summary{
		TotalWork: businessEnd.Sub(businessStart),
		TotalTask: totalTask,
	}
	summary.Other = summary.TotalWork - summary.TotalTask

	for taskID, duration := range perTask {
		name, ok := names[taskID]
		if !ok {
			name = "unknown task"
		}
		summary.Lines = append(summary.Lines, TaskLine{Name: name, Duration: duration})
	}
	sort.Slice(summary.Lines, func(i, j int) bool {
		return summary.Lines[i].Name < summary.Lines[j].Name
	})

	return summary, nil
}

// TaskRow is a task with its completed activity for the current day, as
// shown on the tasks screen.
type TaskRow struct {
	Task      models.Task
	Total     time.Duration
	Spans     []string // "09:00~10:30" per completed interval
	Measuring bool
}

// DayOverview returns every task with its summed time and interval spans
// for today, in task id order.
func (t *Tracker) DayOverview() ([]TaskRow, error) {
	logs, err := t.Logs.GetCompletedForDay(t.state.WorkDayID)
	if err != nil {
		return nil, err
	}

	totals := map[int64]time.Duration{}
	spans := map[int64][]string{}
	for _, log := range logs {
		totals[log.TaskID] += log.EndTime.Sub(log.StartTime)
		spans[log.TaskID] = append(spans[log.TaskID],
			log.StartTime.Format("15:04")+"~"+log.EndTime.Format("15:04"))
	}

	tasks, err := t.Tasks.GetAll()
	if err != nil {
		return nil, err
	}

	rows := make([]TaskRow, 0, len(tasks))
	for _, task := range tasks {
		row := TaskRow{
			Task:  task,
			Total: totals[task.ID],
			Spans: spans[task.ID],
		}
		if t.state.Active != nil && t.state.Active.TaskID == task.ID {
			row.Measuring = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

package tracker

import (
	"time"

	"daybook/internal/models"
)

// DayHistory is one day's completed logs with its break-adjusted totals.
// Work is the business window minus the configured break; Other is the
// signed remainder after task time, negative when logs exceed the window.
type DayHistory struct {
	Date    string
	Entries []models.LogEntry
	Tasks   time.Duration
	Work    time.Duration
	Other   time.Duration
	Closed  bool // business start and end both recorded
}

// HistoryByDay groups every completed log by day, newest first, and folds
// the break into each closed day's net work time. Days whose business end
// was never recorded carry their logs but no totals.
func (t *Tracker) HistoryByDay(breakTime time.Duration) ([]DayHistory, error) {
	entries, err := t.Logs.GetAllCompleted()
	if err != nil {
		return nil, err
	}

	workDays, err := t.WorkDays.GetAll()
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]models.WorkDay, len(workDays))
	for _, day := range workDays {
		byDate[day.Date] = day
	}

	var days []DayHistory
	for _, entry := range entries {
		if len(days) == 0 || days[len(days)-1].Date != entry.Date {
			days = append(days, DayHistory{Date: entry.Date})
		}
		day := &days[len(days)-1]
		day.Entries = append(day.Entries, entry)
		day.Tasks += entry.EndTime.Sub(entry.StartTime)
	}

	for i := range days {
		day := &days[i]
		wd, ok := byDate[day.Date]
		if !ok || wd.StartTime == nil || wd.EndTime == nil {
			continue
		}
		day.Closed = true
		day.Work = wd.EndTime.Sub(*wd.StartTime) - breakTime
		day.Other = day.Work - day.Tasks
	}

	return days, nil
}

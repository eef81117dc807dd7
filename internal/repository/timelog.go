package repository

import (
	"database/sql"
	"time"

	"daybook/internal/models"
)

type TimeLogRepo struct {
	db *sql.DB
}

func NewTimeLogRepo(db *sql.DB) *TimeLogRepo {
	return &TimeLogRepo{db: db}
}

// Start opens an interval for a task on a work day and returns its id.
func (r *TimeLogRepo) Start(workDayID, taskID int64, start time.Time) (int64, error) {
	result, err := r.db.Exec(
		"INSERT INTO time_logs (work_day_id, task_id, start_time) VALUES (?, ?, ?)",
		workDayID, taskID, start,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// End writes the closing timestamp of an interval. A missing id is an
// ErrNotFound, not a silent no-op.
func (r *TimeLogRepo) End(logID int64, end time.Time) error {
	result, err := r.db.Exec("UPDATE time_logs SET end_time = ? WHERE id = ?", end, logID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *TimeLogRepo) Delete(logID int64) error {
	result, err := r.db.Exec("DELETE FROM time_logs WHERE id = ?", logID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// GetCompletedForDay returns the day's closed intervals only.
func (r *TimeLogRepo) GetCompletedForDay(workDayID int64) ([]models.TimeLog, error) {
	rows, err := r.db.Query(`
		SELECT id, work_day_id, task_id, start_time, end_time
		FROM time_logs
		WHERE work_day_id = ? AND end_time IS NOT NULL
		ORDER BY start_time
	`, workDayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimeLogs(rows)
}

// GetForTaskOnDay returns a task's intervals for a day, open ones included.
func (r *TimeLogRepo) GetForTaskOnDay(workDayID, taskID int64) ([]models.TimeLog, error) {
	rows, err := r.db.Query(`
		SELECT id, work_day_id, task_id, start_time, end_time
		FROM time_logs
		WHERE work_day_id = ? AND task_id = ?
		ORDER BY start_time
	`, workDayID, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimeLogs(rows)
}

func scanTimeLogs(rows *sql.Rows) ([]models.TimeLog, error) {
	var logs []models.TimeLog
	for rows.Next() {
		var log models.TimeLog
		var end sql.NullTime

		if err := rows.Scan(&log.ID, &log.WorkDayID, &log.TaskID, &log.StartTime, &end); err != nil {
			return nil, err
		}
		if end.Valid {
			log.EndTime = &end.Time
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// GetAllCompleted returns every closed interval joined with its date and
// task name, newest day first, earliest start first within a day.
func (r *TimeLogRepo) GetAllCompleted() ([]models.LogEntry, error) {
	rows, err := r.db.Query(`
		SELECT wd.work_date, t.name, tl.start_time, tl.end_time
		FROM time_logs tl
		JOIN work_days wd ON wd.id = tl.work_day_id
		JOIN tasks t ON t.id = tl.task_id
		WHERE tl.end_time IS NOT NULL
		ORDER BY wd.work_date DESC, tl.start_time ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.Date, &e.TaskName, &e.StartTime, &e.EndTime); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package models

import "time"

// DateLayout is how work_days.work_date is stored and compared.
const DateLayout = "2006-01-02"

type WorkDay struct {
	ID        int64
	Date      string // DateLayout
	StartTime *time.Time
	EndTime   *time.Time
}

type Task struct {
	ID   int64
	Name string
}

type TimeLog struct {
	ID        int64
	WorkDayID int64
	TaskID    int64
	StartTime time.Time
	EndTime   *time.Time // nil while the task is running
}

// LogEntry is a completed time log joined with its day and task name.
type LogEntry struct {
	Date      string
	TaskName  string
	StartTime time.Time
	EndTime   time.Time
}

// ActiveTask describes the one task currently being timed. Its fields are
// always set together; "no task running" is a nil *ActiveTask.
type ActiveTask struct {
	TaskID    int64
	TaskName  string
	StartedAt time.Time
	LogID     int64
}

// Snapshot is the durable copy of the in-progress session, written after
// every state change and read once at startup.
type Snapshot struct {
	WorkDayID     int64
	BusinessStart time.Time
	Active        *ActiveTask
}

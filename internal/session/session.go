// Package session persists the in-progress work session to a side file so
// an interrupted process can pick up a running task on the next start. The
// SQLite store stays the source of truth for historical data; this file
// only answers "was a task running, and since when".
package session

import (
	"encoding/json"
	"os"
	"time"

	"daybook/internal/models"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// snapshotFile is the on-disk shape. Timestamps are RFC 3339 text so the
// file stays readable and round-trips exactly.
type snapshotFile struct {
	WorkDayID            int64   `json:"work_day_id"`
	BusinessStartTime    string  `json:"business_start_time,omitempty"`
	CurrentTaskID        *int64  `json:"current_task_id,omitempty"`
	CurrentTaskName      *string `json:"current_task_name,omitempty"`
	CurrentTaskStartTime string  `json:"current_task_start_time,omitempty"`
	CurrentLogID         *int64  `json:"current_log_id,omitempty"`
}

func (s *Store) Save(snap models.Snapshot) error {
	file := snapshotFile{
		WorkDayID: snap.WorkDayID,
	}
	if !snap.BusinessStart.IsZero() {
		file.BusinessStartTime = snap.BusinessStart.Format(time.RFC3339Nano)
	}
	if snap.Active != nil {
		file.CurrentTaskID = &snap.Active.TaskID
		file.CurrentTaskName = &snap.Active.TaskName
		file.CurrentTaskStartTime = snap.Active.StartedAt.Format(time.RFC3339Nano)
		file.CurrentLogID = &snap.Active.LogID
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Load reads the snapshot, if any. A missing or unparsable file means "no
// prior session" rather than an error: recovery is best effort. A single
// timestamp field that fails to parse is dropped without discarding the
// rest of the record.
func (s *Store) Load() (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil
	}

	snap := models.Snapshot{WorkDayID: file.WorkDayID}
	if ts, err := time.Parse(time.RFC3339Nano, file.BusinessStartTime); err == nil {
		snap.BusinessStart = ts
	}

	if file.CurrentTaskID != nil && file.CurrentLogID != nil {
		active := models.ActiveTask{
			TaskID: *file.CurrentTaskID,
			LogID:  *file.CurrentLogID,
		}
		if file.CurrentTaskName != nil {
			active.TaskName = *file.CurrentTaskName
		}
		if ts, err := time.Parse(time.RFC3339Nano, file.CurrentTaskStartTime); err == nil {
			active.StartedAt = ts
		}
		snap.Active = &active
	}

	return &snap, nil
}

// Clear removes the snapshot file. Nothing to remove is fine.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

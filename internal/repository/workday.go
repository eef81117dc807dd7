package repository

import (
	"database/sql"
	"time"

	"daybook/internal/models"
)

type WorkDayRepo struct {
	db *sql.DB
}

func NewWorkDayRepo(db *sql.DB) *WorkDayRepo {
	return &WorkDayRepo{db: db}
}

// GetOrCreate returns the single work day row for a date, inserting it on
// first access that day.
func (r *WorkDayRepo) GetOrCreate(date string) (*models.WorkDay, error) {
	day, err := r.GetByDate(date)
	if err != nil {
		return nil, err
	}
	if day != nil {
		return day, nil
	}

	result, err := r.db.Exec("INSERT INTO work_days (work_date) VALUES (?)", date)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

func (r *WorkDayRepo) GetByID(id int64) (*models.WorkDay, error) {
	return r.scanOne(r.db.QueryRow(
		"SELECT id, work_date, start_time, end_time FROM work_days WHERE id = ?", id,
	))
}

func (r *WorkDayRepo) GetByDate(date string) (*models.WorkDay, error) {
	return r.scanOne(r.db.QueryRow(
		"SELECT id, work_date, start_time, end_time FROM work_days WHERE work_date = ?", date,
	))
}

// GetAll returns every work day, newest first.
func (r *WorkDayRepo) GetAll() ([]models.WorkDay, error) {
	rows, err := r.db.Query(
		"SELECT id, work_date, start_time, end_time FROM work_days ORDER BY work_date DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.WorkDay
	for rows.Next() {
		var day models.WorkDay
		var start sql.NullTime
		var end sql.NullTime

		if err := rows.Scan(&day.ID, &day.Date, &start, &end); err != nil {
			return nil, err
		}
		if start.Valid {
			day.StartTime = &start.Time
		}
		if end.Valid {
			day.EndTime = &end.Time
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (r *WorkDayRepo) scanOne(row *sql.Row) (*models.WorkDay, error) {
	var day models.WorkDay
	var start sql.NullTime
	var end sql.NullTime

	err := row.Scan(&day.ID, &day.Date, &start, &end)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if start.Valid {
		day.StartTime = &start.Time
	}
	if end.Valid {
		day.EndTime = &end.Time
	}

	return &day, nil
}

func (r *WorkDayRepo) SetStartTime(id int64, start time.Time) error {
	result, err := r.db.Exec("UPDATE work_days SET start_time = ? WHERE id = ?", start, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *WorkDayRepo) SetEndTime(id int64, end time.Time) error {
	result, err := r.db.Exec("UPDATE work_days SET end_time = ? WHERE id = ?", end, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes a work day; its time logs go with it via cascade.
func (r *WorkDayRepo) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM work_days WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"daybook/internal/models"
)

type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) Create(name string) (*models.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("task name is empty")
	}

	result, err := r.db.Exec("INSERT INTO tasks (name) VALUES (?)", name)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

func (r *TaskRepo) GetByID(id int64) (*models.Task, error) {
	var t models.Task
	err := r.db.QueryRow("SELECT id, name FROM tasks WHERE id = ?", id).Scan(&t.ID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) GetByName(name string) (*models.Task, error) {
	var t models.Task
	err := r.db.QueryRow("SELECT id, name FROM tasks WHERE name = ?", name).Scan(&t.ID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) GetAll() ([]models.Task, error) {
	rows, err := r.db.Query("SELECT id, name FROM tasks ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Rename changes a task's name. On a collision the old name is untouched
// and ErrDuplicateName is returned.
func (r *TaskRepo) Rename(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("task name is empty")
	}

	result, err := r.db.Exec("UPDATE tasks SET name = ? WHERE id = ?", name, id)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes a task and, via cascade, all of its time logs.
func (r *TaskRepo) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

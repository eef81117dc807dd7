package repository

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName means a task name collided with an existing one.
	ErrDuplicateName = errors.New("name already exists")
)

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

package domain

import (
	"errors"
	"time"
)

var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrEmptyText    = errors.New("todo text must not be empty")
)

type Todo struct {
	ID        string
	UserID    string
	Text      string
	Completed bool
	// CompletedAt is non-nil exactly when Completed is true.
	CompletedAt *time.Time
	CreatedAt   time.Time
}

package task

import (
	"errors"
	"time"
)

// Priority is the urgency level a task carries.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Task struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Priority  Priority   `json:"priority"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ErrNotFound covers both a missing task and a task owned by someone
// else. Callers must not be able to tell the two apart.
var ErrNotFound = errors.New("task not found")

type CreateTaskRequest struct {
	Title     string     `json:"title" binding:"required,min=1,max=200"`
	Completed bool       `json:"completed"`
	Priority  Priority   `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate   *time.Time `json:"dueDate"`
}

// UpdateTaskRequest is a patch: nil fields keep their stored value.
type UpdateTaskRequest struct {
	Title     *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Completed *bool      `json:"completed"`
	Priority  *Priority  `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate   *time.Time `json:"dueDate"`
}

package task

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(userID string, req CreateTaskRequest) Task {
	now := time.Now().UTC()

	priority := req.Priority

	if priority == "" {
		priority = PriorityMedium
	}

	return Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     req.Title,
		Completed: req.Completed,
		Priority:  priority,
		DueDate:   req.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

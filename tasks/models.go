// Package tasks implements personally-owned task records: CRUD with strict
// owner scoping, composable list filtering, keyword search, pagination, and
// aggregate statistics. Every operation takes the caller's user id explicitly;
// there is no ambient identity inside this package.
package tasks

import (
	"time"

	"github.com/user/taskhub-go/apperror"
)

// TaskStatus is the closed set of task lifecycle states.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// ParseStatus converts a wire value into a TaskStatus.
func ParseStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return TaskStatus(s), nil
	default:
		return "", apperror.NewValidationError("invalid status: must be PENDING, IN_PROGRESS or COMPLETED", nil)
	}
}

// TaskPriority is the closed set of task priorities.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// ParsePriority converts a wire value into a TaskPriority.
func ParsePriority(s string) (TaskPriority, error) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return TaskPriority(s), nil
	default:
		return "", apperror.NewValidationError("invalid priority: must be LOW, MEDIUM, HIGH or URGENT", nil)
	}
}

// Task is a persistent task record. OwnerID is immutable after creation and
// every lookup filters by it.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"-"`
	OwnerID     int64        `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Statistics is the per-owner aggregate view, computed on demand and never
// persisted.
type Statistics struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Overdue    int64 `json:"overdue"`
}

package tasks

import (
	"time"

	"github.com/user/taskhub-go/apperror"
)

// dateLayout is the wire format for due dates. Due dates are calendar dates;
// no timezone conversion happens here.
const dateLayout = time.DateOnly

// TaskRequest is the payload for creating or updating a task. Status and
// priority are optional: on create they default to PENDING/MEDIUM, on update
// the task keeps its current values. OwnerID never appears here; it always
// comes from the authenticated principal.
type TaskRequest struct {
	Title       string  `json:"title" validate:"required,max=100" example:"Write spec"`
	Description string  `json:"description" validate:"max=500"`
	Status      *string `json:"status,omitempty" example:"PENDING"`
	Priority    *string `json:"priority,omitempty" example:"MEDIUM"`
	DueDate     *string `json:"due_date,omitempty" example:"2026-09-01"`
}

// TaskResponse is the public projection of a task.
type TaskResponse struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *string      `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func toTaskResponse(t *Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		formatted := t.DueDate.Format(dateLayout)
		resp.DueDate = &formatted
	}
	return resp
}

func toTaskResponses(ts []Task) []TaskResponse {
	out := make([]TaskResponse, len(ts))
	for i := range ts {
		out[i] = toTaskResponse(&ts[i])
	}
	return out
}

// ListQuery is the criteria for one list invocation: filters, keyword, sort,
// and pagination. Constructed per request and consumed once.
type ListQuery struct {
	Status   *TaskStatus
	Priority *TaskPriority
	DueFrom  *time.Time
	DueTo    *time.Time
	Keyword  string
	SortBy   string
	SortDir  string
	Page     int
	Size     int
}

// TaskPage is one page of results plus pagination metadata.
type TaskPage struct {
	Items      []TaskResponse `json:"items"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

// parseDueDate parses an optional calendar-date string.
func parseDueDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, apperror.NewValidationError("invalid due_date: expected YYYY-MM-DD", err)
	}
	return &t, nil
}

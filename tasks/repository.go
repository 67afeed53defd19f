package tasks

import (
	"context"
	"time"
)

// PageFilter carries the structured criteria for a paginated owner-scoped
// query. SortBy must already be a whitelisted column name; the service
// normalizes it before it gets here.
type PageFilter struct {
	Status   *TaskStatus
	Priority *TaskPriority
	DueFrom  *time.Time
	DueTo    *time.Time
	SortBy   string
	SortDesc bool
	Offset   int
	Limit    int
}

// TaskRepository is the task store adapter. Every method is owner-scoped: a
// task belonging to another owner is indistinguishable from one that does not
// exist. Implementations return apperror kinds (NotFoundError, DatabaseError).
type TaskRepository interface {
	Create(ctx context.Context, task *Task) (*Task, error)
	// Update persists all mutable fields of the task. The (id, owner) pair
	// addresses the row; ownership can never change.
	Update(ctx context.Context, task *Task) (*Task, error)
	Delete(ctx context.Context, id, ownerID int64) error

	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*Task, error)
	FindByOwner(ctx context.Context, ownerID int64) ([]Task, error)
	// FindPageByOwner applies the structured filters, sort, and page window
	// in a single query and also returns the total matching count.
	FindPageByOwner(ctx context.Context, ownerID int64, filter PageFilter) ([]Task, int64, error)
	FindByStatusAndOwner(ctx context.Context, status TaskStatus, ownerID int64) ([]Task, error)
	FindByPriorityAndOwner(ctx context.Context, priority TaskPriority, ownerID int64) ([]Task, error)
	// FindOverdueByOwner returns tasks due strictly before today that are not
	// completed.
	FindOverdueByOwner(ctx context.Context, ownerID int64, today time.Time) ([]Task, error)
	SearchByKeywordAndOwner(ctx context.Context, keyword string, ownerID int64) ([]Task, error)

	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
	CountByStatusAndOwner(ctx context.Context, status TaskStatus, ownerID int64) (int64, error)
	CountOverdueByOwner(ctx context.Context, ownerID int64, today time.Time) (int64, error)
}

package tasks

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/user/taskhub-go/apperror"
)

// sortColumns maps accepted sort field names (snake_case and the camelCase
// variants clients send) to the columns the store may order by. Anything else
// falls back to created_at.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"updatedAt":  "updated_at",
	"due_date":   "due_date",
	"dueDate":    "due_date",
	"title":      "title",
	"priority":   "priority",
	"status":     "status",
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service is the task query/filter engine and the enforcement point for
// ownership scoping. Every method takes the owner's user id explicitly; no
// task is ever addressed by id alone.
type Service struct {
	repo   TaskRepository
	logger *slog.Logger
}

// NewService constructs a task Service.
func NewService(repo TaskRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create stores a new task owned by ownerID. Status defaults to PENDING and
// priority to MEDIUM when the request leaves them unset.
func (s *Service) Create(ctx context.Context, ownerID int64, req TaskRequest) (*TaskResponse, error) {
	s.logger.Debug("creating task", "owner_id", ownerID)

	task, err := s.taskFromRequest(req, &Task{
		Status:   StatusPending,
		Priority: PriorityMedium,
	})
	if err != nil {
		return nil, err
	}
	task.OwnerID = ownerID

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	s.logger.Info("task created", "task_id", created.ID, "owner_id", ownerID)

	resp := toTaskResponse(created)
	return &resp, nil
}

// Get returns one task by id, scoped to its owner. A task owned by someone
// else fails exactly like a nonexistent one.
func (s *Service) Get(ctx context.Context, ownerID, taskID int64) (*TaskResponse, error) {
	task, err := s.repo.FindByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

// Update overwrites the task's mutable fields. Omitted status/priority keep
// their current values; identity and ownership never change.
func (s *Service) Update(ctx context.Context, ownerID, taskID int64, req TaskRequest) (*TaskResponse, error) {
	s.logger.Debug("updating task", "task_id", taskID, "owner_id", ownerID)

	current, err := s.repo.FindByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskFromRequest(req, current)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		return nil, err
	}
	s.logger.Info("task updated", "task_id", taskID, "owner_id", ownerID)

	resp := toTaskResponse(updated)
	return &resp, nil
}

// Delete removes the task permanently. Deleting an already-deleted or
// foreign-owned task fails with the same not-found error.
func (s *Service) Delete(ctx context.Context, ownerID, taskID int64) error {
	if _, err := s.repo.FindByIDAndOwner(ctx, taskID, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, taskID, ownerID); err != nil {
		return err
	}
	s.logger.Info("task deleted", "task_id", taskID, "owner_id", ownerID)
	return nil
}

// List runs one query invocation. A keyword takes precedence and ignores the
// structured filters; otherwise a lone status or priority filter returns the
// matching tasks; otherwise the full paginated query with sort and optional
// due-date range applies. An out-of-range page index yields an empty page.
func (s *Service) List(ctx context.Context, ownerID int64, q ListQuery) (*TaskPage, error) {
	if keyword := strings.TrimSpace(q.Keyword); keyword != "" {
		tasks, err := s.repo.SearchByKeywordAndOwner(ctx, keyword, ownerID)
		if err != nil {
			return nil, err
		}
		return unpagedResult(tasks), nil
	}
	if q.Status != nil {
		tasks, err := s.repo.FindByStatusAndOwner(ctx, *q.Status, ownerID)
		if err != nil {
			return nil, err
		}
		return unpagedResult(tasks), nil
	}
	if q.Priority != nil {
		tasks, err := s.repo.FindByPriorityAndOwner(ctx, *q.Priority, ownerID)
		if err != nil {
			return nil, err
		}
		return unpagedResult(tasks), nil
	}

	page := q.Page
	if page < 0 {
		page = 0
	}
	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	filter := PageFilter{
		DueFrom:  q.DueFrom,
		DueTo:    q.DueTo,
		SortBy:   normalizeSortField(q.SortBy),
		SortDesc: strings.EqualFold(q.SortDir, "desc"),
		Offset:   page * size,
		Limit:    size,
	}
	tasks, total, err := s.repo.FindPageByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &TaskPage{
		Items:      toTaskResponses(tasks),
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Overdue returns the owner's tasks due before today that are not completed.
// Today is evaluated once per call using the server's local date.
func (s *Service) Overdue(ctx context.Context, ownerID int64) ([]TaskResponse, error) {
	tasks, err := s.repo.FindOverdueByOwner(ctx, ownerID, today())
	if err != nil {
		return nil, err
	}
	return toTaskResponses(tasks), nil
}

// Statistics computes the owner's aggregate counts. All five counts share one
// "today" so the overdue figure is consistent with the rest of the snapshot.
func (s *Service) Statistics(ctx context.Context, ownerID int64) (*Statistics, error) {
	s.logger.Debug("computing task statistics", "owner_id", ownerID)

	total, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountByStatusAndOwner(ctx, StatusPending, ownerID)
	if err != nil {
		return nil, err
	}
	inProgress, err := s.repo.CountByStatusAndOwner(ctx, StatusInProgress, ownerID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CountByStatusAndOwner(ctx, StatusCompleted, ownerID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repo.CountOverdueByOwner(ctx, ownerID, today())
	if err != nil {
		return nil, err
	}

	return &Statistics{
		Total:      total,
		Pending:    pending,
		InProgress: inProgress,
		Completed:  completed,
		Overdue:    overdue,
	}, nil
}

// taskFromRequest validates the request and applies it over base: for create,
// base carries the defaults; for update, base is the stored task so omitted
// status/priority are kept.
func (s *Service) taskFromRequest(req TaskRequest, base *Task) (*Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.NewValidationError("title must not be empty", nil)
	}

	task := *base
	task.Title = title
	task.Description = strings.TrimSpace(req.Description)

	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}
	if req.Priority != nil {
		priority, err := ParsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	task.DueDate = dueDate

	return &task, nil
}

func unpagedResult(tasks []Task) *TaskPage {
	return &TaskPage{
		Items:      toTaskResponses(tasks),
		Page:       0,
		Size:       len(tasks),
		TotalItems: int64(len(tasks)),
		TotalPages: 1,
	}
}

func normalizeSortField(field string) string {
	if column, ok := sortColumns[field]; ok {
		return column
	}
	return "created_at"
}

// today is the server-local calendar date at midnight.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

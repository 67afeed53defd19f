package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/taskhub-go/apperror"
)

// PostgresTaskRepository is the pgx-backed TaskRepository.
type PostgresTaskRepository struct {
	db *pgxpool.Pool
}

// NewPostgresTaskRepository creates a PostgresTaskRepository.
func NewPostgresTaskRepository(db *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

const taskColumns = `id, title, description, status, priority, due_date, owner_id, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var task Task
	var description sql.NullString
	var dueDate sql.NullTime
	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&dueDate,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Description = description.String
	if dueDate.Valid {
		d := dueDate.Time
		task.DueDate = &d
	}
	return &task, nil
}

func collectTasks(rows pgx.Rows) ([]Task, error) {
	defer rows.Close()
	tasks := []Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) Create(ctx context.Context, task *Task) (*Task, error) {
	query := `INSERT INTO tasks (title, description, status, priority, due_date, owner_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		task.Title, nullString(task.Description), task.Status, task.Priority, task.DueDate, task.OwnerID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create task", err)
	}
	return task, nil
}

func (r *PostgresTaskRepository) Update(ctx context.Context, task *Task) (*Task, error) {
	query := `UPDATE tasks
	          SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, updated_at = now()
	          WHERE id = $6 AND owner_id = $7
	          RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		task.Title, nullString(task.Description), task.Status, task.Priority, task.DueDate,
		task.ID, task.OwnerID,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("task with ID %d not found", task.ID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update task", err)
	}
	return task, nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id, ownerID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("task with ID %d not found", id), nil)
	}
	return nil
}

func (r *PostgresTaskRepository) FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`
	task, err := scanTask(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("task with ID %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to query task", err)
	}
	return task, nil
}

func (r *PostgresTaskRepository) FindByOwner(ctx context.Context, ownerID int64) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query tasks", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to read tasks", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) FindPageByOwner(ctx context.Context, ownerID int64, filter PageFilter) ([]Task, int64, error) {
	where := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	argID := 2

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Priority != nil {
		where = append(where, fmt.Sprintf("priority = $%d", argID))
		args = append(args, *filter.Priority)
		argID++
	}
	if filter.DueFrom != nil {
		where = append(where, fmt.Sprintf("due_date >= $%d", argID))
		args = append(args, *filter.DueFrom)
		argID++
	}
	if filter.DueTo != nil {
		where = append(where, fmt.Sprintf("due_date <= $%d", argID))
		args = append(args, *filter.DueTo)
		argID++
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count tasks", err)
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	// SortBy is whitelisted by the service, never raw client input.
	query := fmt.Sprintf(
		`SELECT %s FROM tasks WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		taskColumns, whereClause, filter.SortBy, direction, argID, argID+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to query tasks", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to read tasks", err)
	}
	return tasks, total, nil
}

func (r *PostgresTaskRepository) FindByStatusAndOwner(ctx context.Context, status TaskStatus, ownerID int64) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = $1 AND owner_id = $2 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, status, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query tasks by status", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to read tasks", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) FindByPriorityAndOwner(ctx context.Context, priority TaskPriority, ownerID int64) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE priority = $1 AND owner_id = $2 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, priority, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query tasks by priority", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to read tasks", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) FindOverdueByOwner(ctx context.Context, ownerID int64, today time.Time) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
	          WHERE owner_id = $1 AND due_date < $2 AND status <> $3
	          ORDER BY due_date`
	rows, err := r.db.Query(ctx, query, ownerID, today, StatusCompleted)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query overdue tasks", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to read tasks", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) SearchByKeywordAndOwner(ctx context.Context, keyword string, ownerID int64) ([]Task, error) {
	// Case-insensitive substring match over title and description. The
	// keyword is escaped so user input cannot smuggle LIKE wildcards.
	pattern := "%" + escapeLike(keyword) + "%"
	query := `SELECT ` + taskColumns + ` FROM tasks
	          WHERE owner_id = $1 AND (title ILIKE $2 OR description ILIKE $2)
	          ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, ownerID, pattern)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to search tasks", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to read tasks", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count tasks", err)
	}
	return count, nil
}

func (r *PostgresTaskRepository) CountByStatusAndOwner(ctx context.Context, status TaskStatus, ownerID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE status = $1 AND owner_id = $2`, status, ownerID).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count tasks by status", err)
	}
	return count, nil
}

func (r *PostgresTaskRepository) CountOverdueByOwner(ctx context.Context, ownerID int64, today time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM tasks WHERE owner_id = $1 AND due_date < $2 AND status <> $3`
	err := r.db.QueryRow(ctx, query, ownerID, today, StatusCompleted).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count overdue tasks", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

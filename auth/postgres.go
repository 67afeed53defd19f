package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/taskhub-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// PostgresUserRepository is the pgx-backed UserRepository.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository creates a PostgresUserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, username, email, password, first_name, last_name, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	var firstName, lastName sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&firstName,
		&lastName,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.FirstName = firstName.String
	user.LastName = lastName.String
	return &user, nil
}

func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, login string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $2`
	user, err := scanUser(r.db.QueryRow(ctx, query, login, strings.ToLower(login)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to query user", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to query user", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, apperror.NewDatabaseError("failed to check username", err)
	}
	return exists, nil
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, strings.ToLower(email)).Scan(&exists)
	if err != nil {
		return false, apperror.NewDatabaseError("failed to check email", err)
	}
	return exists, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (username, email, password, first_name, last_name)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		user.Username, user.Email, user.HashedPassword, user.FirstName, user.LastName,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// The service pre-checks both identifiers, but a concurrent
			// registration can still race the insert.
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, apperror.NewConflictError("username is already taken", nil)
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, apperror.NewConflictError("email is already in use", nil)
			}
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) UpdateName(ctx context.Context, id int64, firstName, lastName string) (*User, error) {
	query := `UPDATE users SET first_name = $1, last_name = $2 WHERE id = $3
	          RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, firstName, lastName, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, hashedPassword, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}
	return nil
}

package auth

import "context"

// UserRepository is the credential store adapter. Implementations return
// apperror kinds: NotFoundError for missing rows, DatabaseError for
// infrastructural failures.
type UserRepository interface {
	// FindByUsernameOrEmail looks a user up by either identifier with a
	// single query. Email comparison is done on the lowercased value.
	FindByUsernameOrEmail(ctx context.Context, login string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *User) (*User, error)
	// UpdateName overwrites the user's first and last name.
	UpdateName(ctx context.Context, id int64, firstName, lastName string) (*User, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	Delete(ctx context.Context, id int64) error
}

package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/taskhub-go/apperror"
	"github.com/user/taskhub-go/config"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	nextID int64
	users  map[int64]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]*User{}}
}

func (f *fakeUserRepo) FindByUsernameOrEmail(ctx context.Context, login string) (*User, error) {
	for _, u := range f.users {
		if u.Username == login || u.Email == strings.ToLower(login) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *User) (*User, error) {
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return user, nil
}

func (f *fakeUserRepo) UpdateName(ctx context.Context, id int64, firstName, lastName string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}
	u.FirstName = firstName
	u.LastName = lastName
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}
	delete(f.users, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	cfg := config.AuthConfig{JWTSecret: "test-secret", TokenDuration: time.Hour}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, cfg, logger), repo
}

func registerAlice(t *testing.T, s *Service) *AuthResponse {
	t.Helper()
	resp, err := s.Register(context.Background(), RegisterRequest{
		Username:  "alice",
		Email:     "Alice@Example.com",
		Password:  "Secret123!",
		FirstName: "Alice",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister_IssuesDecodableToken(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	resp := registerAlice(t, s)

	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "alice", resp.User.Username)
	// Emails are stored lowercased.
	assert.Equal(t, "alice@example.com", resp.User.Email)

	principal, err := s.CurrentPrincipal(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, principal.UserID)
	assert.Equal(t, "alice", principal.Username)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	registerAlice(t, s)

	_, err := s.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "Secret123!",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflictError(err))
	assert.Contains(t, err.Error(), "username")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	registerAlice(t, s)

	_, err := s.Register(context.Background(), RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflictError(err))
	assert.Contains(t, err.Error(), "email")
}

func TestRegister_PasswordIsHashed(t *testing.T) {
	t.Parallel()

	s, repo := newTestService(t)
	resp := registerAlice(t, s)

	stored := repo.users[resp.User.ID]
	require.NotEqual(t, "Secret123!", stored.HashedPassword)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("Secret123!")))
}

func TestLogin_ByUsernameAndByEmail(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	registered := registerAlice(t, s)

	byUsername, err := s.Login(context.Background(), LoginRequest{UsernameOrEmail: "alice", Password: "Secret123!"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byUsername.User.ID)

	byEmail, err := s.Login(context.Background(), LoginRequest{UsernameOrEmail: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byEmail.User.ID)
}

func TestLogin_FailureIsGeneric(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	registerAlice(t, s)

	_, unknownErr := s.Login(context.Background(), LoginRequest{UsernameOrEmail: "nobody", Password: "Secret123!"})
	require.Error(t, unknownErr)
	assert.True(t, apperror.IsAuthError(unknownErr))

	_, wrongPassErr := s.Login(context.Background(), LoginRequest{UsernameOrEmail: "alice", Password: "wrong"})
	require.Error(t, wrongPassErr)
	assert.True(t, apperror.IsAuthError(wrongPassErr))

	// The caller cannot tell a missing user from a wrong password.
	assert.Equal(t, unknownErr.Error(), wrongPassErr.Error())
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	resp := registerAlice(t, s)
	ctx := context.Background()

	err := s.ChangePassword(ctx, resp.User.ID, ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "NewSecret456!",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsAuthError(err))

	err = s.ChangePassword(ctx, resp.User.ID, ChangePasswordRequest{
		CurrentPassword: "Secret123!",
		NewPassword:     "NewSecret456!",
	})
	require.NoError(t, err)

	_, err = s.Login(ctx, LoginRequest{UsernameOrEmail: "alice", Password: "Secret123!"})
	require.Error(t, err)
	_, err = s.Login(ctx, LoginRequest{UsernameOrEmail: "alice", Password: "NewSecret456!"})
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	resp := registerAlice(t, s)

	updated, err := s.UpdateProfile(context.Background(), resp.User.ID, UpdateProfileRequest{
		FirstName: "Alicia",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	resp := registerAlice(t, s)
	ctx := context.Background()

	require.NoError(t, s.DeleteAccount(ctx, resp.User.ID))

	_, err := s.GetProfile(ctx, resp.User.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/taskhub-go/apperror"
	"github.com/user/taskhub-go/config"
)

// Service implements registration, credential verification, and token
// issuance against a UserRepository. bcrypt hashes carry their own salt, and
// CompareHashAndPassword is a constant-time comparison.
type Service struct {
	repo   UserRepository
	cfg    config.AuthConfig
	logger *slog.Logger
}

// NewService constructs an auth Service.
func NewService(repo UserRepository, cfg config.AuthConfig, logger *slog.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, logger: logger}
}

// Register creates a new user and issues a token for it. Username and email
// uniqueness are checked before any write.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	s.logger.Debug("registering user", "username", req.Username)

	taken, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.NewConflictError("username is already taken", nil)
	}

	inUse, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, apperror.NewConflictError("email is already in use", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: string(hashed),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", created.ID, "username", created.Username)

	return s.issueResponse(created)
}

// Login verifies the credential pair and returns a token plus the user's
// public fields. Lookup and hash mismatches produce the same generic error so
// callers cannot tell which half failed.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	s.logger.Debug("login attempt", "login", req.UsernameOrEmail)

	user, err := s.repo.FindByUsernameOrEmail(ctx, req.UsernameOrEmail)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("invalid username/email or password", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("invalid username/email or password", nil)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return s.issueResponse(user)
}

// CurrentPrincipal decodes a presented token into the principal it asserts.
func (s *Service) CurrentPrincipal(token string) (*Principal, error) {
	return DecodeToken(token, s.cfg.JWTSecret)
}

// GetProfile returns the public projection of a user.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// UpdateProfile overwrites the caller's first and last name.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.repo.UpdateName(ctx, userID, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user profile updated", "user_id", userID)
	resp := toUserResponse(user)
	return &resp, nil
}

// ChangePassword re-verifies the current password before storing the new
// hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.CurrentPassword)); err != nil {
		return apperror.NewAuthError("current password is incorrect", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// DeleteAccount removes the user permanently. Owned tasks go with it via the
// schema's cascade.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user account deleted", "user_id", userID)
	return nil
}

func (s *Service) issueResponse(user *User) (*AuthResponse, error) {
	token, expiresAt, err := IssueToken(user, s.cfg.JWTSecret, s.cfg.TokenDuration)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue token", err)
	}
	return &AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.Unix(),
		User:      toUserResponse(user),
	}, nil
}

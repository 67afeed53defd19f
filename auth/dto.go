package auth

import "time"

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50" example:"alice"`
	Email     string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password  string `json:"password" validate:"required,min=6,max=72" example:"Secret123!"`
	FirstName string `json:"first_name" validate:"max=50" example:"Alice"`
	LastName  string `json:"last_name" validate:"max=50" example:"Doe"`
}

// LoginRequest is the login payload. Login accepts either username or email.
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required" example:"alice"`
	Password        string `json:"password" validate:"required" example:"Secret123!"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned on successful login or registration.
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type" example:"Bearer"`
	ExpiresAt int64        `json:"expires_at" example:"1735689600"`
	User      UserResponse `json:"user"`
}

// UpdateProfileRequest updates the caller's name fields.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name" validate:"max=50"`
}

// ChangePasswordRequest changes the caller's password after re-verifying the
// current one.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

func toUserResponse(user *User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}

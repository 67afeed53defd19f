package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/user/taskhub-go/apperror"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handlers exposes the auth Service over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates auth Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary User registration
// @Description Registers a new user and returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Registration details"
// @Success 201 {object} auth.AuthResponse "User created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 409 {object} apperror.ErrorResponse "Username or email already exists"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError(validationMessage(err), err))
			return
		}

		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary User login
// @Description Authenticates a user by username or email and returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Login credentials"
// @Success 200 {object} auth.AuthResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError(validationMessage(err), err))
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleLogout godoc
// @Summary User logout
// @Description Tokens are stateless, so logout is a client-side token removal; the server just acknowledges.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout acknowledged"
// @Router /auth/logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
	}
}

// HandleGetProfile godoc
// @Summary Get current user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.UserResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /auth/profile [get]
func (h *Handlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		profile, err := h.service.GetProfile(r.Context(), principal.UserID)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateProfile godoc
// @Summary Update current user's name
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profileBody body auth.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} auth.UserResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /users/me [put]
func (h *Handlers) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError(validationMessage(err), err))
			return
		}

		profile, err := h.service.UpdateProfile(r.Context(), principal.UserID, req)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// HandleChangePassword godoc
// @Summary Change current user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param passwordBody body auth.ChangePasswordRequest true "Current and new password"
// @Success 204 "Password changed"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized or wrong current password"
// @Router /users/me/password [put]
func (h *Handlers) HandleChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError(validationMessage(err), err))
			return
		}

		if err := h.service.ChangePassword(r.Context(), principal.UserID, req); err != nil {
			WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleDeleteAccount godoc
// @Summary Delete current user's account
// @Tags auth
// @Security BearerAuth
// @Success 204 "Account deleted"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /users/me [delete]
func (h *Handlers) HandleDeleteAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		if err := h.service.DeleteAccount(r.Context(), principal.UserID); err != nil {
			WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// validationMessage flattens a validator error into a readable message.
func validationMessage(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		return "validation failed on field '" + first.Field() + "' (" + first.Tag() + ")"
	}
	return "validation failed"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError converts any error into the standard JSON error response. Errors
// that are not *apperror.AppError are wrapped as internal errors so nothing
// leaks raw.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

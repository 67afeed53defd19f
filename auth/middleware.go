package auth

import (
	"net/http"
	"strings"

	"github.com/user/taskhub-go/apperror"
	"github.com/user/taskhub-go/config"
)

// Middleware returns an HTTP middleware that validates the bearer token and
// stores the decoded principal in the request context. Requests without a
// valid token are rejected with 401; no anonymous principal is ever created.
func Middleware(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("authorization header is missing", nil))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				WriteError(w, r, apperror.NewAuthError("authorization header format must be Bearer {token}", nil))
				return
			}

			principal, err := DecodeToken(parts[1], cfg.JWTSecret)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			ctx := NewContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

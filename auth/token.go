package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/taskhub-go/apperror"
)

const tokenIssuer = "taskhub"

// Claims is the JWT payload carried by issued tokens. It embeds the standard
// registered claims (exp, iat, nbf) and adds the principal fields.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken produces a signed HS256 token embedding the user's identity,
// valid for ttl from now. The returned time is the token's expiry.
func IssueToken(user *User, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// DecodeToken verifies the token's signature and validity window and returns
// the embedded principal. The signature is checked before any claim is
// trusted; malformed, tampered, wrong-secret, and expired tokens all fail
// with an AuthError.
func DecodeToken(tokenString, secret string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, apperror.NewAuthError("invalid or expired token", err)
	}
	if !token.Valid {
		return nil, apperror.NewAuthError("invalid token", nil)
	}
	if claims.UserID == 0 {
		return nil, apperror.NewAuthError("invalid token: user_id claim is missing", nil)
	}

	return &Principal{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

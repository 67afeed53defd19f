// Package auth handles user identity: registration, credential verification,
// bearer token issuing and validation, and the per-request principal.
package auth

import "time"

// User is a persistent identity record.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never serialized
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// Principal is the authenticated identity derived from a validated token. It
// lives for the duration of one request and is never persisted.
type Principal struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Package domain holds the entities, repository ports and the pure weight
// analytics used by the rest of the application.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateUser is returned when a username is already taken.
var ErrDuplicateUser = errors.New("user already exists")

// User is an account that owns weight, water and goal data.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is a logged-in browser session bound to a user agent.
type Session struct {
	Token     string
	UserID    int64
	UserAgent string
	IP        string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserRepository is the port for user persistence. Lookups return
// ErrNotFound for unknown users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository is the port for session persistence. GetByToken returns
// ErrNotFound for unknown tokens.
type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}

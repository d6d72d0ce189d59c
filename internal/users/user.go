// Package users manages accounts, credentials and per-user watchlists.
package users

import (
	"context"
	"errors"
	"time"
)

// Role gates access to privileged operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Sentinel errors for the users package.
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is a registered account.
type User struct {
	ID           string    `json:"_id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Watchlist    []string  `json:"watchlist"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Registration is the input to Service.Register.
type Registration struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

// Store persists accounts. Emails are stored lowercased and are unique.
type Store interface {
	Create(ctx context.Context, u User) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// AddToWatchlist appends movieID unless already present and returns
	// the resulting watchlist.
	AddToWatchlist(ctx context.Context, userID, movieID string) ([]string, error)

	// RemoveFromWatchlist removes movieID if present and returns the
	// resulting watchlist.
	RemoveFromWatchlist(ctx context.Context, userID, movieID string) ([]string, error)

	Count(ctx context.Context) (int, error)
}

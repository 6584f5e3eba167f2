package domain

import (
	"context"
	"time"
)

const (
	MaxNameLength     = 20
	MaxUsernameLength = 20
)

// User is the single account that owns the watchlist. Username and
// PasswordHash stay empty until credentials are set with the admin command.
type User struct {
	ID           int64
	Name         string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasCredentials reports whether the user can log in.
func (u *User) HasCredentials() bool {
	return u.Username != "" && u.PasswordHash != ""
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// First returns the user with the lowest ID, which is the watchlist owner.
	First(ctx context.Context) (*User, error)
	Update(ctx context.Context, user *User) error
}

package identity

import (
	"context"
	"time"
)

// Store describes persistence for user accounts.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// Update persists the mutable fields of u (profile, role, flags).
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, offset, limit int) ([]User, error)
	Stats(ctx context.Context) (Stats, error)
}

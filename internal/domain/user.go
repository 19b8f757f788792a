package domain

import (
	"context"
	"errors"
)

// Sentinel errors for user operations.
var (
	ErrDuplicateEmail = errors.New("email already in use")
)

// User represents a registered user.
// swagger:model User
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser returns a new User. ID is set by the repository on create.
func NewUser(name, email string) *User {
	return &User{Name: name, Email: email}
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// List returns users filtered by ids; an empty ids slice means all
	// users, paginated.
	List(ctx context.Context, ids []int64, p PaginationParams) ([]*User, error)
	Delete(ctx context.Context, id int64) error
}

// UserService defines the admin user directory operations.
type UserService interface {
	Create(ctx context.Context, name, email string) (*User, error)
	List(ctx context.Context, ids []int64, p PaginationParams) ([]*User, error)
	Delete(ctx context.Context, id int64) error
}

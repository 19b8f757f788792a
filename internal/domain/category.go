package domain

import (
	"context"
	"errors"
)

// Sentinel errors for category operations.
var (
	ErrDuplicateCategoryName = errors.New("category name already in use")
	ErrCategoryInUse         = errors.New("category has linked events")
)

// Category is a simple keyed label events are classified under.
// swagger:model Category
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryRepository defines the interface for category storage.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, p PaginationParams) ([]*Category, error)
}

// CategoryService defines category directory operations. Deleting a
// category that still has events fails with ErrCategoryInUse.
type CategoryService interface {
	Create(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, id int64, name string) (*Category, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context, p PaginationParams) ([]*Category, error)
}

package domain

import "context"

// Compilation is a named set of event references, optionally pinned to
// the main page.
// swagger:model Compilation
type Compilation struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Pinned bool     `json:"pinned"`
	Events []*Event `json:"events"`
}

// NewCompilation is the payload for creating a compilation.
type NewCompilation struct {
	Title    string
	Pinned   bool
	EventIDs []int64
}

// CompilationPatch is a partial update; only non-nil fields are applied.
type CompilationPatch struct {
	Title    *string
	Pinned   *bool
	EventIDs []int64
}

// CompilationRepository defines the interface for compilation storage.
type CompilationRepository interface {
	Create(ctx context.Context, c *Compilation, eventIDs []int64) error
	GetByID(ctx context.Context, id int64) (*Compilation, error)
	Update(ctx context.Context, c *Compilation, eventIDs []int64) error
	Delete(ctx context.Context, id int64) error
	// List returns compilations, optionally filtered by pinned flag.
	List(ctx context.Context, pinned *bool, p PaginationParams) ([]*Compilation, error)
}

// CompilationService defines compilation operations.
type CompilationService interface {
	Create(ctx context.Context, draft NewCompilation) (*Compilation, error)
	Update(ctx context.Context, id int64, patch CompilationPatch) (*Compilation, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Compilation, error)
	List(ctx context.Context, pinned *bool, p PaginationParams) ([]*Compilation, error)
}

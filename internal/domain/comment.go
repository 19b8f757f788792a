package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for comment operations.
var (
	ErrNotCommentAuthor   = errors.New("only the author can change a comment")
	ErrCommentEditExpired = errors.New("comment can only be edited within one hour of posting")
)

// Comment is free text a user posts on an event.
// swagger:model Comment
type Comment struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event"`
	AuthorID  int64     `json:"author"`
	Text      string    `json:"text"`
	CreatedOn time.Time `json:"created_on"`
	Updated   bool      `json:"updated"`
}

// CommentRepository defines the interface for comment storage.
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id int64) error
	ListByEvent(ctx context.Context, eventID int64, p PaginationParams) ([]*Comment, error)
}

// CommentService defines comment operations. Authors may edit their own
// comments within one hour of posting; admins may delete any comment.
type CommentService interface {
	Create(ctx context.Context, authorID, eventID int64, text string) (*Comment, error)
	UpdateByAuthor(ctx context.Context, authorID, eventID, commentID int64, text string) (*Comment, error)
	DeleteByAuthor(ctx context.Context, authorID, eventID, commentID int64) error
	DeleteByAdmin(ctx context.Context, eventID, commentID int64) error
	ListByEvent(ctx context.Context, eventID int64, p PaginationParams) ([]*Comment, error)
	GetByID(ctx context.Context, eventID, commentID int64) (*Comment, error)
}

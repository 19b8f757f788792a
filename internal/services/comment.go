package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"explorewithme/internal/clock"
	"explorewithme/internal/domain"
)

// Authors can only edit a comment for a limited time after posting.
const commentEditWindow = time.Hour

type commentService struct {
	commentRepo    domain.CommentRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	clk            clock.Clock
	contextTimeout time.Duration
}

// NewCommentService creates a CommentService with the given dependencies.
func NewCommentService(
	commentRepo domain.CommentRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	clk clock.Clock,
	timeout time.Duration,
) domain.CommentService {
	return &commentService{
		commentRepo:    commentRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		clk:            clk,
		contextTimeout: timeout,
	}
}

func (s *commentService) Create(ctx context.Context, authorID, eventID int64, text string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if text == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get author: %w", err)
	}

	comment := &domain.Comment{
		EventID:   eventID,
		AuthorID:  authorID,
		Text:      text,
		CreatedOn: s.clk.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) UpdateByAuthor(ctx context.Context, authorID, eventID, commentID int64, text string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if text == "" {
		return nil, domain.ErrInvalidInput
	}
	comment, err := s.getEventComment(ctx, eventID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, domain.ErrNotCommentAuthor
	}
	if s.clk.Now().After(comment.CreatedOn.Add(commentEditWindow)) {
		return nil, domain.ErrCommentEditExpired
	}

	comment.Text = text
	comment.Updated = true
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) DeleteByAuthor(ctx context.Context, authorID, eventID, commentID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comment, err := s.getEventComment(ctx, eventID, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != authorID {
		return domain.ErrNotCommentAuthor
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *commentService) DeleteByAdmin(ctx context.Context, eventID, commentID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getEventComment(ctx, eventID, commentID); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *commentService) ListByEvent(ctx context.Context, eventID int64, p domain.PaginationParams) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	comments, err := s.commentRepo.ListByEvent(ctx, eventID, p)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}

func (s *commentService) GetByID(ctx context.Context, eventID, commentID int64) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.getEventComment(ctx, eventID, commentID)
}

// getEventComment loads the comment and verifies it belongs to the
// event; a mismatch is reported as not-found.
func (s *commentService) getEventComment(ctx context.Context, eventID, commentID int64) (*domain.Comment, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if comment.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return comment, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"explorewithme/internal/domain"
)

type compilationService struct {
	compilationRepo domain.CompilationRepository
	contextTimeout  time.Duration
}

// NewCompilationService creates a CompilationService with the given repository.
func NewCompilationService(compilationRepo domain.CompilationRepository, timeout time.Duration) domain.CompilationService {
	return &compilationService{
		compilationRepo: compilationRepo,
		contextTimeout:  timeout,
	}
}

func (s *compilationService) Create(ctx context.Context, draft domain.NewCompilation) (*domain.Compilation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if draft.Title == "" {
		return nil, domain.ErrInvalidInput
	}
	c := &domain.Compilation{
		Title:  draft.Title,
		Pinned: draft.Pinned,
	}
	if err := s.compilationRepo.Create(ctx, c, draft.EventIDs); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("create compilation: %w", err)
	}
	return s.GetByID(ctx, c.ID)
}

func (s *compilationService) Update(ctx context.Context, id int64, patch domain.CompilationPatch) (*domain.Compilation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.compilationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Pinned != nil {
		c.Pinned = *patch.Pinned
	}
	// A nil event id list keeps the current membership.
	if err := s.compilationRepo.Update(ctx, c, patch.EventIDs); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update compilation: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *compilationService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.compilationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete compilation: %w", err)
	}
	return nil
}

func (s *compilationService) GetByID(ctx context.Context, id int64) (*domain.Compilation, error) {
	c, err := s.compilationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}
	if c.Events == nil {
		c.Events = []*domain.Event{}
	}
	return c, nil
}

func (s *compilationService) List(ctx context.Context, pinned *bool, p domain.PaginationParams) ([]*domain.Compilation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	compilations, err := s.compilationRepo.List(ctx, pinned, p)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	if compilations == nil {
		compilations = []*domain.Compilation{}
	}
	return compilations, nil
}

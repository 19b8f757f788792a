package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"explorewithme/internal/domain"
)

type categoryService struct {
	categoryRepo   domain.CategoryRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewCategoryService creates a CategoryService with the given repositories.
func NewCategoryService(categoryRepo domain.CategoryRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.CategoryService {
	return &categoryService{
		categoryRepo:   categoryRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *categoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	category := &domain.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDuplicateCategoryName) {
			return nil, domain.ErrDuplicateCategoryName
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, name string) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDuplicateCategoryName) {
			return nil, domain.ErrDuplicateCategoryName
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inUse, err := s.eventRepo.ExistsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if inUse {
		return domain.ErrCategoryInUse
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	categories, err := s.categoryRepo.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return categories, nil
}

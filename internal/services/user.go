package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"explorewithme/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repository.
func NewUserService(userRepo domain.UserRepository, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

func (s *userService) Create(ctx context.Context, name, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	user := domain.NewUser(name, email)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, ids []int64, p domain.PaginationParams) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, err := s.userRepo.List(ctx, ids, p)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

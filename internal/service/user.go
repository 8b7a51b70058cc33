// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hpnchanel/userapi/internal/cache"
	"github.com/hpnchanel/userapi/internal/metrics"
	"github.com/hpnchanel/userapi/internal/model"
	"github.com/hpnchanel/userapi/internal/repository"
	"github.com/hpnchanel/userapi/internal/validation"
)

// Service errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

// ValidationError carries field-level violation messages.
type ValidationError struct {
	Fields validation.Errors
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// UserService handles user business logic.
type UserService struct {
	store   repository.UserStore
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
// cache may be nil when no Redis instance is configured.
func NewUserService(store repository.UserStore, userCache *cache.Cache, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		cache:   userCache,
		metrics: recorder,
	}
}

// CreateUserInput defines input for creating a user.
// Nil fields were absent from the request.
type CreateUserInput struct {
	Name  *string
	Email *string
}

// UpdateUserInput defines the partial update for an existing user.
type UpdateUserInput struct {
	ID    int64
	Name  *string
	Email *string
}

// CreateUser validates input, pre-checks email uniqueness, and inserts the user.
// The pre-check is an optimization only; the storage-level unique constraint
// is authoritative and its violation is always handled.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	fields := validation.Fields{Name: input.Name, Email: input.Email}
	if errs := validation.Validate(fields, validation.Full); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if _, err := s.store.GetUserByEmail(ctx, *input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("email pre-check failed: %w", err)
	}

	user, err := s.store.CreateUser(ctx, *input.Name, *input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// Lost the pre-check race; the constraint is the source of truth.
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.metrics.IncUserCreated()
	return user, nil
}

// GetUser returns a user by id, consulting the cache first.
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	if s.cache != nil {
		if user, err := s.cache.GetUser(ctx, id); err == nil {
			s.metrics.IncUserCacheHit()
			return user, nil
		}
		s.metrics.IncUserCacheMiss()
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		// Best effort; a failed cache write never fails the read.
		_ = s.cache.SetUser(ctx, user)
	}

	return user, nil
}

// ListUsers returns all users in creation order.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUser validates the supplied fields and applies them to an existing user.
func (s *UserService) UpdateUser(ctx context.Context, input UpdateUserInput) (*model.User, error) {
	if _, err := s.store.GetUserByID(ctx, input.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	fields := validation.Fields{Name: input.Name, Email: input.Email}
	if errs := validation.Validate(fields, validation.Partial); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	patch := repository.UserPatch{Name: input.Name, Email: input.Email}
	user, err := s.store.UpdateUser(ctx, input.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.DeleteUser(ctx, input.ID)
	}
	s.metrics.IncUserUpdated()

	return user, nil
}

// DeleteUser removes a user by id.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if s.cache != nil {
		_ = s.cache.DeleteUser(ctx, id)
	}
	s.metrics.IncUserDeleted()

	return nil
}

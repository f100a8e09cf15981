// Package admin provides user administration: listing accounts and managing roles.
package admin

import (
	"context"
	"fmt"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/pkg/httputil"
)

// Repository defines the interface for admin user operations.
type Repository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error)
}

// Service implements admin business logic.
type Service struct {
	repo Repository
}

// NewService creates a new admin service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRole sets a user's role. An admin may never change their own role,
// even to the value it already has.
func (s *Service) UpdateRole(ctx context.Context, acting *httputil.Identity, targetUserID string, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	if targetUserID == acting.UserID {
		return nil, ErrSelfRoleChange
	}

	return s.repo.UpdateRole(ctx, targetUserID, role)
}

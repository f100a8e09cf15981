// Package tasks provides HTTP handlers and business logic for task tracking.
package tasks

import (
	"context"
	"fmt"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/pkg/httputil"
)

// Pagination constants.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Service implements task business logic.
type Service struct {
	repo Repository
}

// NewService creates a new task service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// scopeFor derives the visibility scope from the caller identity:
// admins see every task, everyone else only their own.
func scopeFor(identity *httputil.Identity) Scope {
	if identity.Role == domain.RoleAdmin {
		return AdminScope()
	}
	return OwnerScope(identity.UserID)
}

// ListInput holds list criteria from the caller.
type ListInput struct {
	Page   int
	Limit  int
	Status *domain.TaskStatus
	Search string
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// List returns a page of tasks visible to the caller, newest first, with the
// total count across all pages.
func (s *Service) List(ctx context.Context, identity *httputil.Identity, input ListInput) ([]domain.Task, Pagination, error) {
	page := input.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := input.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	filter := Filter{
		Scope:  scopeFor(identity),
		Status: input.Status,
		Search: input.Search,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	total, err := s.repo.CountTasks(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count tasks: %w", err)
	}

	list, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list tasks: %w", err)
	}

	return list, Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Get returns a single task within the caller's visibility scope.
func (s *Service) Get(ctx context.Context, identity *httputil.Identity, id string) (*domain.Task, error) {
	return s.repo.GetTask(ctx, id, scopeFor(identity))
}

// CreateInput holds data for creating a task.
type CreateInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
}

// Create inserts a task owned by the caller and returns the persisted row.
func (s *Service) Create(ctx context.Context, identity *httputil.Identity, input CreateInput) (*domain.Task, error) {
	status := input.Status
	if status == "" {
		status = domain.TaskStatusPending
	}

	task := &domain.Task{
		Title:         input.Title,
		Description:   input.Description,
		Status:        status,
		OwnerID:       identity.UserID,
		OwnerUsername: identity.Username,
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// UpdateInput holds data for updating a task. An empty Status keeps the
// task's current status.
type UpdateInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
}

// Update overwrites title, description and status of a task within the
// caller's visibility scope and returns the refreshed row.
func (s *Service) Update(ctx context.Context, identity *httputil.Identity, id string, input UpdateInput) (*domain.Task, error) {
	scope := scopeFor(identity)

	task := &domain.Task{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
	}

	if err := s.repo.UpdateTask(ctx, task, scope); err != nil {
		return nil, err
	}

	return s.repo.GetTask(ctx, id, scope)
}

// Delete permanently removes a task within the caller's visibility scope.
func (s *Service) Delete(ctx context.Context, identity *httputil.Identity, id string) error {
	return s.repo.DeleteTask(ctx, id, scopeFor(identity))
}

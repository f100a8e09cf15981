package tasks

import (
	"context"

	"github.com/taskhive/taskhive/internal/domain"
)

// Scope restricts queries to the tasks a caller may see. A nil OwnerID means
// unrestricted (admin); otherwise only tasks owned by OwnerID are visible.
type Scope struct {
	OwnerID *string
}

// AdminScope returns an unrestricted scope.
func AdminScope() Scope {
	return Scope{}
}

// OwnerScope returns a scope restricted to one owner.
func OwnerScope(ownerID string) Scope {
	return Scope{OwnerID: &ownerID}
}

// Filter represents list criteria for tasks.
type Filter struct {
	Scope  Scope
	Status *domain.TaskStatus
	Search string
	Limit  int
	Offset int
}

// Repository defines the interface for task data operations.
// All mutations are single conditional statements: the ownership check is part
// of the WHERE clause, so there is no window between check and write.
type Repository interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id string, scope Scope) (*domain.Task, error)
	ListTasks(ctx context.Context, filter Filter) ([]domain.Task, error)
	CountTasks(ctx context.Context, filter Filter) (int, error)
	UpdateTask(ctx context.Context, task *domain.Task, scope Scope) error
	DeleteTask(ctx context.Context, id string, scope Scope) error
}

// Package postgres provides PostgreSQL implementation of the tasks repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/tasks"
)

// Repository implements tasks.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateTask inserts a task row. The store assigns id and created_at.
func (r *Repository) CreateTask(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (title, description, status, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.OwnerID,
	).Scan(&task.ID, &task.CreatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by id within the given scope. A task outside the
// scope is reported as not found.
func (r *Repository) GetTask(ctx context.Context, id string, scope tasks.Scope) (*domain.Task, error) {
	query := `
		SELECT t.id, t.title, t.description, t.status, t.owner_id, u.username, t.created_at
		FROM tasks t
		JOIN users u ON u.id = t.owner_id
		WHERE t.id = $1
	`
	args := []any{id}
	if scope.OwnerID != nil {
		query += " AND t.owner_id = $2"
		args = append(args, *scope.OwnerID)
	}

	var task domain.Task
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.OwnerID,
		&task.OwnerUsername,
		&task.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tasks.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return &task, nil
}

// ListTasks retrieves a page of tasks matching the filter, newest first.
func (r *Repository) ListTasks(ctx context.Context, filter tasks.Filter) ([]domain.Task, error) {
	query := `
		SELECT t.id, t.title, t.description, t.status, t.owner_id, u.username, t.created_at
		FROM tasks t
		JOIN users u ON u.id = t.owner_id
		WHERE 1=1
	`
	clause, args := filterClause(filter, nil)
	query += clause
	query += " ORDER BY t.created_at DESC"
	query += " LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Task, 0)
	for rows.Next() {
		var task domain.Task
		err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.OwnerID,
			&task.OwnerUsername,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return list, nil
}

// CountTasks returns the number of tasks matching the filter across all pages.
func (r *Repository) CountTasks(ctx context.Context, filter tasks.Filter) (int, error) {
	query := `SELECT COUNT(*) FROM tasks t WHERE 1=1`
	clause, args := filterClause(filter, nil)
	query += clause

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return total, nil
}

// UpdateTask overwrites title and description and conditionally the status:
// an empty status keeps the stored one. The scope is part of the WHERE clause
// so the ownership check and the write are a single atomic statement.
func (r *Repository) UpdateTask(ctx context.Context, task *domain.Task, scope tasks.Scope) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = COALESCE(NULLIF($3, ''), status)
		WHERE id = $4
	`
	args := []any{task.Title, task.Description, string(task.Status), task.ID}
	if scope.OwnerID != nil {
		query += " AND owner_id = $5"
		args = append(args, *scope.OwnerID)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tasks.ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes a task within the given scope in a single statement.
func (r *Repository) DeleteTask(ctx context.Context, id string, scope tasks.Scope) error {
	query := `DELETE FROM tasks WHERE id = $1`
	args := []any{id}
	if scope.OwnerID != nil {
		query += " AND owner_id = $2"
		args = append(args, *scope.OwnerID)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tasks.ErrTaskNotFound
	}
	return nil
}

// filterClause renders the shared WHERE conditions for list and count queries.
// Search matches title or description case-insensitively.
func filterClause(filter tasks.Filter, args []any) (string, []any) {
	clause := ""

	if filter.Scope.OwnerID != nil {
		args = append(args, *filter.Scope.OwnerID)
		clause += " AND t.owner_id = $" + strconv.Itoa(len(args))
	}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clause += " AND t.status = $" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		clause += " AND (t.title ILIKE $" + n + " OR t.description ILIKE $" + n + ")"
	}

	return clause, args
}

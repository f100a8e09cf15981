// Package inventory provides product and stock tracking with a change history log.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/pkg/httputil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Pagination constants.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Service implements inventory business logic.
type Service struct {
	repo  Repository
	title cases.Caser
}

// NewService creates a new inventory service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		title: cases.Title(language.English),
	}
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListInput holds list criteria from the caller.
type ListInput struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// List returns a page of products, newest first.
func (s *Service) List(ctx context.Context, input ListInput) ([]domain.Product, Pagination, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	filter := Filter{
		Search:   input.Search,
		Category: input.Category,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	total, err := s.repo.CountProducts(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count products: %w", err)
	}

	list, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list products: %w", err)
	}

	return list, Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// CreateInput holds data for creating a product.
type CreateInput struct {
	Name     string
	Unit     string
	Category string
	Brand    string
	Stock    int
	Status   string
}

// Create inserts a product and returns the persisted row. Category and brand
// labels are normalized to title case so filters stay consistent.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:     input.Name,
		Unit:     input.Unit,
		Category: s.title.String(input.Category),
		Brand:    s.title.String(input.Brand),
		Stock:    input.Stock,
		Status:   input.Status,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

// UpdateInput holds data for updating a product.
type UpdateInput struct {
	Name     string
	Unit     string
	Category string
	Brand    string
	Stock    int
	Status   string
}

// Update overwrites a product's fields. When the stock level changes, a
// history entry recording the old and new values and the acting user is
// written in the same transaction as the update.
func (s *Service) Update(ctx context.Context, identity *httputil.Identity, id string, input UpdateInput) (*domain.Product, error) {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:       id,
		Name:     input.Name,
		Unit:     input.Unit,
		Category: s.title.String(input.Category),
		Brand:    s.title.String(input.Brand),
		Stock:    input.Stock,
		Status:   input.Status,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := s.repo.UpdateProductTx(ctx, tx, product); err != nil {
		return nil, err
	}

	if existing.Stock != input.Stock {
		change := &domain.StockChange{
			ProductID: id,
			OldStock:  existing.Stock,
			NewStock:  input.Stock,
			ChangedBy: identity.Username,
		}
		if err := s.repo.CreateStockChangeTx(ctx, tx, change); err != nil {
			return nil, fmt.Errorf("record stock change: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.repo.GetProduct(ctx, id)
}

// Delete permanently removes a product. History rows cascade with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// History returns a page of stock changes for a product, newest first.
func (s *Service) History(ctx context.Context, productID string, page, limit int) ([]domain.StockChange, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	// Confirm the product exists so an unknown id is a 404, not an empty page.
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, Pagination{}, err
	}

	total, err := s.repo.CountStockChanges(ctx, productID)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count stock changes: %w", err)
	}

	list, err := s.repo.ListStockChanges(ctx, productID, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list stock changes: %w", err)
	}

	return list, Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/taskhive/taskhive/internal/domain"
)

// Filter represents list criteria for products.
type Filter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

// Repository defines the interface for inventory data operations.
type Repository interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter Filter) ([]domain.Product, error)
	CountProducts(ctx context.Context, filter Filter) (int, error)
	DeleteProduct(ctx context.Context, id string) error

	// Transaction methods: a stock-changing update and its history entry
	// commit together or not at all.
	BeginTx(ctx context.Context) (pgx.Tx, error)
	UpdateProductTx(ctx context.Context, tx pgx.Tx, product *domain.Product) error
	CreateStockChangeTx(ctx context.Context, tx pgx.Tx, change *domain.StockChange) error

	ListStockChanges(ctx context.Context, productID string, limit, offset int) ([]domain.StockChange, error)
	CountStockChanges(ctx context.Context, productID string) (int, error)
}

// Package postgres provides PostgreSQL implementation of the inventory repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/inventory"
)

// Repository implements inventory.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateProduct inserts a product row.
func (r *Repository) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, unit, category, brand, stock, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		product.Name,
		product.Unit,
		product.Category,
		product.Brand,
		product.Stock,
		product.Status,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by id.
func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, unit, category, brand, stock, status, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	var product domain.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Unit,
		&product.Category,
		&product.Brand,
		&product.Stock,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventory.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &product, nil
}

// ListProducts retrieves a page of products matching the filter, newest first.
func (r *Repository) ListProducts(ctx context.Context, filter inventory.Filter) ([]domain.Product, error) {
	query := `
		SELECT id, name, unit, category, brand, stock, status, created_at, updated_at
		FROM products
		WHERE 1=1
	`
	clause, args := filterClause(filter)
	query += clause
	query += " ORDER BY created_at DESC"
	query += " LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Unit,
			&product.Category,
			&product.Brand,
			&product.Stock,
			&product.Status,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

// CountProducts returns the number of products matching the filter.
func (r *Repository) CountProducts(ctx context.Context, filter inventory.Filter) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE 1=1`
	clause, args := filterClause(filter)
	query += clause

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// DeleteProduct removes a product. Stock history rows cascade.
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return inventory.ErrProductNotFound
	}
	return nil
}

// BeginTx starts a transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// UpdateProductTx overwrites a product's fields within a transaction.
func (r *Repository) UpdateProductTx(ctx context.Context, tx pgx.Tx, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, unit = $2, category = $3, brand = $4, stock = $5, status = $6, updated_at = now()
		WHERE id = $7
	`
	tag, err := tx.Exec(ctx, query,
		product.Name,
		product.Unit,
		product.Category,
		product.Brand,
		product.Stock,
		product.Status,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return inventory.ErrProductNotFound
	}
	return nil
}

// CreateStockChangeTx appends a stock history entry within a transaction.
func (r *Repository) CreateStockChangeTx(ctx context.Context, tx pgx.Tx, change *domain.StockChange) error {
	query := `
		INSERT INTO stock_history (product_id, old_stock, new_stock, changed_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query,
		change.ProductID,
		change.OldStock,
		change.NewStock,
		change.ChangedBy,
	).Scan(&change.ID, &change.CreatedAt)

	if err != nil {
		return fmt.Errorf("create stock change: %w", err)
	}
	return nil
}

// ListStockChanges retrieves a page of stock history for a product, newest first.
func (r *Repository) ListStockChanges(ctx context.Context, productID string, limit, offset int) ([]domain.StockChange, error) {
	query := `
		SELECT id, product_id, old_stock, new_stock, changed_by, created_at
		FROM stock_history
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock changes: %w", err)
	}
	defer rows.Close()

	list := make([]domain.StockChange, 0)
	for rows.Next() {
		var change domain.StockChange
		err := rows.Scan(
			&change.ID,
			&change.ProductID,
			&change.OldStock,
			&change.NewStock,
			&change.ChangedBy,
			&change.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stock change: %w", err)
		}
		list = append(list, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock changes: %w", err)
	}

	return list, nil
}

// CountStockChanges returns the number of history entries for a product.
func (r *Repository) CountStockChanges(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM stock_history WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count stock changes: %w", err)
	}
	return total, nil
}

// filterClause renders the shared WHERE conditions for list and count queries.
func filterClause(filter inventory.Filter) (string, []any) {
	clause := ""
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		clause += " AND category = $" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		clause += " AND (name ILIKE $" + n + " OR brand ILIKE $" + n + ")"
	}

	return clause, args
}

package inventory

import (
	"context"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/pkg/httputil"
)

// mockTx satisfies pgx.Tx for the methods the service touches. The embedded
// interface covers the rest.
type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (m *mockTx) Commit(_ context.Context) error {
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(_ context.Context) error {
	if m.committed {
		return pgx.ErrTxClosed
	}
	m.rolledBack = true
	return nil
}

// mockRepository implements Repository for testing.
type mockRepository struct {
	products map[string]*domain.Product
	changes  []domain.StockChange
	nextID   int
	lastTx   *mockTx
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		products: make(map[string]*domain.Product),
	}
}

func (m *mockRepository) CreateProduct(_ context.Context, product *domain.Product) error {
	m.nextID++
	product.ID = "product-" + strconv.Itoa(m.nextID)
	m.products[product.ID] = product
	return nil
}

func (m *mockRepository) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (m *mockRepository) ListProducts(_ context.Context, _ Filter) ([]domain.Product, error) {
	var list []domain.Product
	for _, p := range m.products {
		list = append(list, *p)
	}
	return list, nil
}

func (m *mockRepository) CountProducts(_ context.Context, _ Filter) (int, error) {
	return len(m.products), nil
}

func (m *mockRepository) DeleteProduct(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockRepository) BeginTx(_ context.Context) (pgx.Tx, error) {
	m.lastTx = &mockTx{}
	return m.lastTx, nil
}

func (m *mockRepository) UpdateProductTx(_ context.Context, _ pgx.Tx, product *domain.Product) error {
	existing, ok := m.products[product.ID]
	if !ok {
		return ErrProductNotFound
	}
	*existing = *product
	return nil
}

func (m *mockRepository) CreateStockChangeTx(_ context.Context, _ pgx.Tx, change *domain.StockChange) error {
	m.changes = append(m.changes, *change)
	return nil
}

func (m *mockRepository) ListStockChanges(_ context.Context, productID string, _, _ int) ([]domain.StockChange, error) {
	var list []domain.StockChange
	for _, c := range m.changes {
		if c.ProductID == productID {
			list = append(list, c)
		}
	}
	return list, nil
}

func (m *mockRepository) CountStockChanges(_ context.Context, productID string) (int, error) {
	count := 0
	for _, c := range m.changes {
		if c.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func adminIdentity() *httputil.Identity {
	return &httputil.Identity{UserID: "admin-id", Username: "boss", Role: domain.RoleAdmin}
}

func TestCreate_NormalizesLabels(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	product, err := service.Create(context.Background(), CreateInput{
		Name:     "Espresso beans",
		Category: "coffee supplies",
		Brand:    "mountain roasters",
		Stock:    10,
	})

	require.NoError(t, err)
	assert.Equal(t, "Espresso beans", product.Name)
	assert.Equal(t, "Coffee Supplies", product.Category)
	assert.Equal(t, "Mountain Roasters", product.Brand)
}

func TestUpdate_StockChangeWritesHistory(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	created, err := service.Create(context.Background(), CreateInput{Name: "Paper", Stock: 50})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), adminIdentity(), created.ID, UpdateInput{
		Name:  "Paper",
		Stock: 35,
	})
	require.NoError(t, err)
	assert.Equal(t, 35, updated.Stock)

	require.Len(t, repo.changes, 1)
	change := repo.changes[0]
	assert.Equal(t, created.ID, change.ProductID)
	assert.Equal(t, 50, change.OldStock)
	assert.Equal(t, 35, change.NewStock)
	assert.Equal(t, "boss", change.ChangedBy)
	assert.True(t, repo.lastTx.committed)
}

func TestUpdate_SameStockSkipsHistory(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	created, err := service.Create(context.Background(), CreateInput{Name: "Paper", Stock: 50})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), adminIdentity(), created.ID, UpdateInput{
		Name:  "Paper rolls",
		Stock: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "Paper rolls", updated.Name)
	assert.Empty(t, repo.changes)
	assert.True(t, repo.lastTx.committed)
}

func TestUpdate_UnknownProduct(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	product, err := service.Update(context.Background(), adminIdentity(), "missing", UpdateInput{
		Name:  "Ghost",
		Stock: 1,
	})

	assert.Nil(t, product)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, repo.changes)
}

func TestHistory_UnknownProduct(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	_, _, err := service.History(context.Background(), "missing", 1, 10)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestHistory_Pagination(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	created, err := service.Create(context.Background(), CreateInput{Name: "Paper", Stock: 10})
	require.NoError(t, err)

	for _, stock := range []int{20, 30, 40} {
		_, err = service.Update(context.Background(), adminIdentity(), created.ID, UpdateInput{
			Name:  "Paper",
			Stock: stock,
		})
		require.NoError(t, err)
	}

	list, pagination, err := service.History(context.Background(), created.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, list, 3) // the mock ignores limits; pagination math is what matters here
	assert.Equal(t, 3, pagination.Total)
	assert.Equal(t, 2, pagination.TotalPages)
	assert.Equal(t, 2, pagination.Limit)
}

func TestDelete_UnknownProduct(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	err := service.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

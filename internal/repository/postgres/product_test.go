package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tugrulb/escrowmarket/internal/domain"
	"github.com/tugrulb/escrowmarket/internal/repository"
	"github.com/tugrulb/escrowmarket/pkg/database"
	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
)

func newProductRepo(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock := database.NewMockPool(t)
	return NewProductRepository(mock), mock
}

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:           "prod-001",
		SellerID:     "seller-001",
		SellerWallet: "SellerWallet111",
		Title:        "Mechanical keyboard",
		Description:  "Hot-swappable switches",
		Category:     "electronics",
		MetadataURI:  "ipfs://Qm123",
		Price:        5_000_000,
		Currency:     domain.CurrencySOL,
		Quantity:     10,
	}
}

func TestProductRepository_Create(t *testing.T) {
	repo, mock := newProductRepo(t)

	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.SellerID, p.SellerWallet, p.Title, p.Description, p.Category,
			p.MetadataURI, p.Price, p.Currency, p.Quantity, domain.ProductStatusActive,
			pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusActive, p.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID(t *testing.T) {
	repo, mock := newProductRepo(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "seller_id", "seller_wallet", "title", "description", "category",
		"metadata_uri", "price", "currency", "quantity", "status", "created_at", "updated_at",
	}).AddRow(
		"prod-001", "seller-001", "SW", "Keyboard", "desc", "electronics",
		"", int64(5000), "SOL", int64(4), domain.ProductStatusActive, now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id").
		WithArgs("prod-001").
		WillReturnRows(rows)

	p, err := repo.GetByID(context.Background(), "prod-001")
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List(t *testing.T) {
	repo, mock := newProductRepo(t)

	now := time.Now().UTC()
	category := "electronics"

	rows := pgxmock.NewRows([]string{
		"id", "seller_id", "seller_wallet", "title", "description", "category",
		"metadata_uri", "price", "currency", "quantity", "status", "created_at", "updated_at",
		"total_count",
	}).AddRow(
		"prod-001", "seller-001", "SW", "Keyboard", "desc", category,
		"", int64(5000), "SOL", int64(4), domain.ProductStatusActive, now, now, 12,
	)

	mock.ExpectQuery("SELECT (.+) count\\(\\*\\) OVER\\(\\) AS total_count").
		WithArgs(category, 20, 0).
		WillReturnRows(rows)

	products, total, err := repo.List(context.Background(), repository.ProductFilter{Category: &category})
	require.NoError(t, err)

	assert.Len(t, products, 1)
	assert.Equal(t, 12, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update(t *testing.T) {
	repo, mock := newProductRepo(t)

	now := time.Now().UTC()
	price := int64(6_000_000)
	quantity := int64(0)

	rows := pgxmock.NewRows([]string{
		"id", "seller_id", "seller_wallet", "title", "description", "category",
		"metadata_uri", "price", "currency", "quantity", "status", "created_at", "updated_at",
	}).AddRow(
		"prod-001", "seller-001", "SW", "Keyboard", "desc", "electronics",
		"", price, "SOL", quantity, domain.ProductStatusSoldOut, now, now,
	)

	mock.ExpectQuery("UPDATE products SET").
		WithArgs("prod-001", "seller-001", (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), &price, &quantity).
		WillReturnRows(rows)

	p, err := repo.Update(context.Background(), "prod-001", "seller-001", repository.ProductUpdate{
		Price:    &price,
		Quantity: &quantity,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusSoldOut, p.Status)
	assert.Equal(t, price, p.Price)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotOwned(t *testing.T) {
	repo, mock := newProductRepo(t)

	title := "New title"
	mock.ExpectQuery("UPDATE products SET").
		WithArgs("prod-001", "intruder", &title, (*string)(nil), (*string)(nil), (*string)(nil), (*int64)(nil), (*int64)(nil)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Update(context.Background(), "prod-001", "intruder", repository.ProductUpdate{Title: &title})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Remove(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectExec("UPDATE products SET status").
		WithArgs("prod-001", "seller-001", domain.ProductStatusRemoved).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.Remove(context.Background(), "prod-001", "seller-001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Remove_WrongSeller(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectExec("UPDATE products SET status").
		WithArgs("prod-001", "intruder", domain.ProductStatusRemoved).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Remove(context.Background(), "prod-001", "intruder")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

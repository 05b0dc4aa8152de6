package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tugrulb/escrowmarket/internal/domain"
	"github.com/tugrulb/escrowmarket/internal/repository"
	"github.com/tugrulb/escrowmarket/pkg/database"
	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
)

const productColumns = `id, seller_id, seller_wallet, title, description, category,
	metadata_uri, price, currency, quantity, status, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new listing.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.ProductStatusActive
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, seller_id, seller_wallet, title, description, category,
			metadata_uri, price, currency, quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.SellerID, p.SellerWallet, p.Title, p.Description, p.Category,
		p.MetadataURI, p.Price, p.Currency, p.Quantity, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a listing by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1",
		id,
	).Scan(
		&p.ID, &p.SellerID, &p.SellerWallet, &p.Title, &p.Description, &p.Category,
		&p.MetadataURI, &p.Price, &p.Currency, &p.Quantity, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

// List returns listings matching the filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIndex))
		args = append(args, *filter.SellerID)
		argIndex++
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var totalCount int
	products := make([]domain.Product, 0)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.SellerID, &p.SellerWallet, &p.Title, &p.Description, &p.Category,
			&p.MetadataURI, &p.Price, &p.Currency, &p.Quantity, &p.Status, &p.CreatedAt, &p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// Update applies a partial update to a listing. Only the owning seller may
// change it, and removed listings stay removed. A quantity change re-resolves
// the ACTIVE/SOLD_OUT flag the same way the reservation path does.
func (r *ProductRepository) Update(ctx context.Context, id, sellerID string, update repository.ProductUpdate) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, `
		UPDATE products SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			category = COALESCE($5, category),
			metadata_uri = COALESCE($6, metadata_uri),
			price = COALESCE($7, price),
			quantity = COALESCE($8, quantity),
			status = CASE
				WHEN $8::bigint IS NULL THEN status
				WHEN $8::bigint = 0 THEN 'SOLD_OUT'
				ELSE 'ACTIVE'
			END,
			updated_at = now()
		WHERE id = $1 AND seller_id = $2 AND status <> 'REMOVED'
		RETURNING `+productColumns,
		id, sellerID, update.Title, update.Description, update.Category,
		update.MetadataURI, update.Price, update.Quantity,
	).Scan(
		&p.ID, &p.SellerID, &p.SellerWallet, &p.Title, &p.Description, &p.Category,
		&p.MetadataURI, &p.Price, &p.Currency, &p.Quantity, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &p, nil
}

// Remove marks a listing as removed. The seller guard keeps one seller from
// removing another seller's listing.
func (r *ProductRepository) Remove(ctx context.Context, id, sellerID string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE products SET status = $3, updated_at = now()
		WHERE id = $1 AND seller_id = $2 AND status <> $3`,
		id, sellerID, domain.ProductStatusRemoved,
	)
	if err != nil {
		return fmt.Errorf("remove product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

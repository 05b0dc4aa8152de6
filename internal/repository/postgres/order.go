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

const orderColumns = `id, product_id, buyer_id, buyer_wallet, seller_id, seller_wallet,
	quantity, unit_price, total_amount, currency, status, shipping_address,
	escrow_address, escrow_tx, tracking_number, dispute_reason, created_at, updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateWithReservation reserves inventory and inserts the order in one
// transaction. The product row is locked with SELECT ... FOR UPDATE so two
// buyers racing for the last unit cannot both succeed. The listing flips to
// SOLD_OUT when the decrement reaches zero.
func (r *OrderRepository) CreateWithReservation(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		sellerID     string
		sellerWallet string
		price        int64
		currency     string
		quantity     int64
		status       string
	)
	err = tx.QueryRow(ctx, `
		SELECT seller_id, seller_wallet, price, currency, quantity, status
		FROM products
		WHERE id = $1
		FOR UPDATE`,
		o.ProductID,
	).Scan(&sellerID, &sellerWallet, &price, &currency, &quantity, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("product", o.ProductID)
		}
		return fmt.Errorf("lock product: %w", err)
	}

	if status != domain.ProductStatusActive {
		return apperrors.ProductUnavailable(o.ProductID, status)
	}
	if o.BuyerID == sellerID {
		return apperrors.SelfPurchaseDenied()
	}
	if o.Quantity > quantity {
		return apperrors.InsufficientQuantity(o.ProductID, o.Quantity, quantity)
	}

	remaining := quantity - o.Quantity
	newStatus := domain.ProductStatusActive
	if remaining == 0 {
		newStatus = domain.ProductStatusSoldOut
	}
	_, err = tx.Exec(ctx, `
		UPDATE products SET quantity = $2, status = $3, updated_at = now()
		WHERE id = $1`,
		o.ProductID, remaining, newStatus,
	)
	if err != nil {
		return fmt.Errorf("decrement product quantity: %w", err)
	}

	// Snapshot the seller and price onto the order; the total is frozen here
	// and never recomputed from the listing.
	o.SellerID = sellerID
	o.SellerWallet = sellerWallet
	o.UnitPrice = price
	o.Currency = currency
	o.TotalAmount = price * o.Quantity
	o.Status = domain.OrderStatusCreated
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, product_id, buyer_id, buyer_wallet, seller_id, seller_wallet,
			quantity, unit_price, total_amount, currency, status, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.ProductID, o.BuyerID, o.BuyerWallet, o.SellerID, o.SellerWallet,
		o.Quantity, o.UnitPrice, o.TotalAmount, o.Currency, o.Status, o.ShippingAddress, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1",
		id,
	).Scan(
		&o.ID, &o.ProductID, &o.BuyerID, &o.BuyerWallet, &o.SellerID, &o.SellerWallet,
		&o.Quantity, &o.UnitPrice, &o.TotalAmount, &o.Currency, &o.Status, &o.ShippingAddress,
		&o.EscrowAddress, &o.EscrowTx, &o.TrackingNumber, &o.DisputeReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.BuyerID != nil {
		conditions = append(conditions, fmt.Sprintf("buyer_id = $%d", argIndex))
		args = append(args, *filter.BuyerID)
		argIndex++
	}
	if filter.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIndex))
		args = append(args, *filter.SellerID)
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

	// count(*) OVER() returns the total in the same query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1,
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
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.ProductID, &o.BuyerID, &o.BuyerWallet, &o.SellerID, &o.SellerWallet,
			&o.Quantity, &o.UnitPrice, &o.TotalAmount, &o.Currency, &o.Status, &o.ShippingAddress,
			&o.EscrowAddress, &o.EscrowTx, &o.TrackingNumber, &o.DisputeReason, &o.CreatedAt, &o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, totalCount, nil
}

// UpdateStatus advances an order with an optimistic guard on the current
// status. Zero rows affected means the order moved concurrently (or does not
// exist), which surfaces as a conflict for the caller to re-read and retry.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, expectedStatus string, update repository.StatusUpdate) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $3,
			tracking_number = COALESCE($4, tracking_number),
			dispute_reason = COALESCE($5, dispute_reason),
			updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, expectedStatus, update.Status, update.TrackingNumber, update.DisputeReason,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.Conflict(fmt.Sprintf("order %s is no longer in status %s", id, expectedStatus))
	}
	return nil
}

// AttachEscrow records the ledger references on an order that has none yet.
func (r *OrderRepository) AttachEscrow(ctx context.Context, id, escrowAddress, txSignature string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET escrow_address = $2, escrow_tx = $3, updated_at = now()
		WHERE id = $1 AND escrow_address IS NULL`,
		id, escrowAddress, txSignature,
	)
	if err != nil {
		return fmt.Errorf("attach escrow: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.Conflict(fmt.Sprintf("order %s already has an escrow reference", id))
	}
	return nil
}

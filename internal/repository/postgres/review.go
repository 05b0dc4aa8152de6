package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tugrulb/escrowmarket/internal/domain"
	"github.com/tugrulb/escrowmarket/pkg/database"
	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a review. The unique constraint on order_id enforces one
// review per order even under concurrent attempts.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	rv.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO reviews (id, order_id, reviewer_id, seller_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rv.ID, rv.OrderID, rv.ReviewerID, rv.SellerID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.AlreadyExists("review", "order_id", rv.OrderID)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// ListBySeller returns a seller's reviews, newest first, with the total count.
func (r *ReviewRepository) ListBySeller(ctx context.Context, sellerID string, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, reviewer_id, seller_id, rating, comment, created_at,
			count(*) OVER() AS total_count
		FROM reviews
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		sellerID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var totalCount int
	reviews := make([]domain.Review, 0)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID, &rv.OrderID, &rv.ReviewerID, &rv.SellerID, &rv.Rating, &rv.Comment, &rv.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, totalCount, nil
}

// SummaryBySeller returns aggregate rating statistics for a seller, together
// with the number of sales they have completed.
func (r *ReviewRepository) SummaryBySeller(ctx context.Context, sellerID string) (*domain.ReviewSummary, error) {
	var summary domain.ReviewSummary
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(AVG(r.rating), 0),
			COUNT(r.id),
			(SELECT COUNT(*) FROM orders o WHERE o.seller_id = $1 AND o.status = 'COMPLETED')
		FROM reviews r
		WHERE r.seller_id = $1`,
		sellerID,
	).Scan(&summary.AverageRating, &summary.TotalCount, &summary.CompletedSales)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.ReviewSummary{}, nil
		}
		return nil, fmt.Errorf("scan review summary: %w", err)
	}
	return &summary, nil
}

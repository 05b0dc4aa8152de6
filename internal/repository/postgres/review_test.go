package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tugrulb/escrowmarket/internal/domain"
	"github.com/tugrulb/escrowmarket/pkg/database"
	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
)

func newReviewRepo(t *testing.T) (*ReviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock := database.NewMockPool(t)
	return NewReviewRepository(mock), mock
}

func TestReviewRepository_Create(t *testing.T) {
	repo, mock := newReviewRepo(t)

	rv := &domain.Review{
		ID:         "review-001",
		OrderID:    "order-001",
		ReviewerID: "buyer-001",
		SellerID:   "seller-001",
		Rating:     5,
		Comment:    "fast shipping",
	}

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.OrderID, rv.ReviewerID, rv.SellerID, rv.Rating, rv.Comment, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), rv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_DuplicateOrder(t *testing.T) {
	repo, mock := newReviewRepo(t)

	rv := &domain.Review{ID: "review-002", OrderID: "order-001", ReviewerID: "buyer-001", SellerID: "seller-001", Rating: 4}

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.OrderID, rv.ReviewerID, rv.SellerID, rv.Rating, rv.Comment, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_order_id_key"})

	err := repo.Create(context.Background(), rv)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListBySeller(t *testing.T) {
	repo, mock := newReviewRepo(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "order_id", "reviewer_id", "seller_id", "rating", "comment", "created_at", "total_count",
	}).
		AddRow("review-001", "order-001", "buyer-001", "seller-001", 5, "great", now, 2).
		AddRow("review-002", "order-002", "buyer-002", "seller-001", 3, "ok", now, 2)

	mock.ExpectQuery("SELECT (.+) FROM reviews").
		WithArgs("seller-001", 20, 0).
		WillReturnRows(rows)

	reviews, total, err := repo.ListBySeller(context.Background(), "seller-001", 1, 20)
	require.NoError(t, err)

	assert.Len(t, reviews, 2)
	assert.Equal(t, 2, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_SummaryBySeller(t *testing.T) {
	repo, mock := newReviewRepo(t)

	rows := pgxmock.NewRows([]string{"avg", "count", "completed_sales"}).AddRow(4.5, 8, 11)

	mock.ExpectQuery("SELECT(.+)COALESCE\\(AVG\\(r.rating\\), 0\\)").
		WithArgs("seller-001").
		WillReturnRows(rows)

	summary, err := repo.SummaryBySeller(context.Background(), "seller-001")
	require.NoError(t, err)

	assert.InDelta(t, 4.5, summary.AverageRating, 0.001)
	assert.Equal(t, 8, summary.TotalCount)
	assert.Equal(t, 11, summary.CompletedSales)

	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tugrulb/escrowmarket/internal/domain"
	"github.com/tugrulb/escrowmarket/internal/event"
	"github.com/tugrulb/escrowmarket/internal/repository"
	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
)

// ReviewService gates review creation: only the buyer of a completed order may
// leave feedback, once per order.
type ReviewService struct {
	reviews  repository.ReviewRepository
	orders   repository.OrderRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	orders repository.OrderRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		orders:   orders,
		producer: producer,
		logger:   logger,
	}
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	OrderID  string
	CallerID string
	Rating   int
	Comment  string
}

// CreateReview validates the gate conditions and persists the review.
func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be an integer between 1 and 5")
	}
	if len(input.Comment) > domain.MaxReviewCommentLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("comment must be at most %d characters", domain.MaxReviewCommentLen))
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order for review: %w", err)
	}
	if input.CallerID != order.BuyerID {
		return nil, apperrors.Forbidden("only the buyer may review this order")
	}
	if order.Status != domain.OrderStatusCompleted {
		return nil, apperrors.Conflict(fmt.Sprintf("order %s is in status %s, reviews require COMPLETED", order.ID, order.Status))
	}

	review := &domain.Review{
		ID:         uuid.New().String(),
		OrderID:    order.ID,
		ReviewerID: order.BuyerID,
		SellerID:   order.SellerID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("order_id", order.ID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListSellerReviews returns a seller's reviews with pagination.
func (s *ReviewService) ListSellerReviews(ctx context.Context, sellerID string, page, perPage int) ([]domain.Review, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	reviews, total, err := s.reviews.ListBySeller(ctx, sellerID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list seller reviews: %w", err)
	}
	return reviews, total, nil
}

// SellerSummary returns aggregate rating statistics for a seller.
func (s *ReviewService) SellerSummary(ctx context.Context, sellerID string) (*domain.ReviewSummary, error) {
	summary, err := s.reviews.SummaryBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("seller review summary: %w", err)
	}
	return summary, nil
}

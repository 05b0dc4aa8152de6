package domain

import "time"

// MaxReviewCommentLen bounds the free-text comment on a review.
const MaxReviewCommentLen = 500

// Review is feedback a buyer leaves on a completed order. One review per
// order, authored by the buyer, immutable once created.
type Review struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	ReviewerID string    `json:"reviewer_id"`
	SellerID   string    `json:"seller_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewSummary contains aggregate review statistics for a seller, alongside
// the completed sales counter used for reputation display.
type ReviewSummary struct {
	AverageRating  float64 `json:"average_rating"`
	TotalCount     int     `json:"total_count"`
	CompletedSales int     `json:"completed_sales"`
}

package repository

import (
	"context"

	"github.com/tugrulb/escrowmarket/internal/domain"
)

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	BuyerID  *string
	SellerID *string
	Status   *string
	Page     int
	PerPage  int
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	SellerID *string
	Category *string
	Status   *string
	Page     int
	PerPage  int
}

// ProductUpdate carries the listing fields a seller may change after
// creation. Nil fields are left untouched.
type ProductUpdate struct {
	Title       *string
	Description *string
	Category    *string
	MetadataURI *string
	Price       *int64
	Quantity    *int64
}

// StatusUpdate carries the fields persisted alongside a status change.
type StatusUpdate struct {
	Status         string
	TrackingNumber *string
	DisputeReason  *string
}

// ProductRepository defines persistence for marketplace listings.
type ProductRepository interface {
	// Create inserts a new listing.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a listing by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns listings matching the filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update applies a partial, seller-gated update and returns the updated
	// listing. Changing the quantity also resolves the ACTIVE/SOLD_OUT flag.
	Update(ctx context.Context, id, sellerID string, update ProductUpdate) (*domain.Product, error)

	// Remove marks a listing as removed so no new orders can target it.
	Remove(ctx context.Context, id, sellerID string) error
}

// OrderRepository defines persistence for orders, including the atomic
// inventory reservation performed at creation.
type OrderRepository interface {
	// CreateWithReservation atomically reserves product inventory and inserts
	// the order row in one transaction. The reservation locks the product row,
	// checks availability, decrements the quantity, and flips the listing to
	// sold out when it reaches zero.
	CreateWithReservation(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus advances an order from expectedStatus to update.Status with
	// an optimistic guard: it fails with a conflict if the order moved in the
	// meantime.
	UpdateStatus(ctx context.Context, id, expectedStatus string, update StatusUpdate) error

	// AttachEscrow records the escrow address and transaction signature
	// obtained from the ledger. Only valid while the order has no escrow yet.
	AttachEscrow(ctx context.Context, id, escrowAddress, txSignature string) error
}

// ReviewRepository defines persistence for buyer reviews.
type ReviewRepository interface {
	// Create inserts a review. Fails if the order already has one.
	Create(ctx context.Context, review *domain.Review) error

	// ListBySeller returns reviews left on a seller's orders with the total count.
	ListBySeller(ctx context.Context, sellerID string, page, perPage int) ([]domain.Review, int, error)

	// SummaryBySeller returns aggregate rating statistics for a seller.
	SummaryBySeller(ctx context.Context, sellerID string) (*domain.ReviewSummary, error)
}

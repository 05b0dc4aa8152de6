package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tugrulb/escrowmarket/internal/domain"
	pkgkafka "github.com/tugrulb/escrowmarket/pkg/kafka"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicOrderCreated       = "marketplace.order.created"
	TopicOrderStatusChanged = "marketplace.order.status_changed"
	TopicEscrowAttached     = "marketplace.order.escrow_attached"
	TopicReviewCreated      = "marketplace.review.created"
)

// Aggregate type constants.
const (
	AggregateTypeOrder  = "order"
	AggregateTypeReview = "review"
)

// Source identifier for events published by this service.
const SourceMarketplace = "marketplace"

// OrderCreatedData is the payload for an order.created event. EscrowPending
// signals that the escrow leg failed at creation time and the order awaits
// reconciliation.
type OrderCreatedData struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	BuyerID       string `json:"buyer_id"`
	SellerID      string `json:"seller_id"`
	Quantity      int64  `json:"quantity"`
	TotalAmount   int64  `json:"total_amount"`
	Currency      string `json:"currency"`
	EscrowPending bool   `json:"escrow_pending"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID     string `json:"order_id"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	TxSignature string `json:"tx_signature,omitempty"`
}

// EscrowAttachedData is the payload for an order.escrow_attached event.
type EscrowAttachedData struct {
	OrderID       string `json:"order_id"`
	EscrowAddress string `json:"escrow_address"`
	TxSignature   string `json:"tx_signature"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ReviewID string `json:"review_id"`
	OrderID  string `json:"order_id"`
	SellerID string `json:"seller_id"`
	Rating   int    `json:"rating"`
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order, escrowPending bool) error {
	data := OrderCreatedData{
		ID:            order.ID,
		ProductID:     order.ProductID,
		BuyerID:       order.BuyerID,
		SellerID:      order.SellerID,
		Quantity:      order.Quantity,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		EscrowPending: escrowPending,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.Bool("escrow_pending", escrowPending),
	)
	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus, txSignature string) error {
	data := OrderStatusChangedData{
		OrderID:     orderID,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		TxSignature: txSignature,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, orderID, AggregateTypeOrder, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)
	return nil
}

// PublishEscrowAttached publishes an order.escrow_attached event after a
// deferred escrow leg is reconciled.
func (p *Producer) PublishEscrowAttached(ctx context.Context, orderID, escrowAddress, txSignature string) error {
	data := EscrowAttachedData{
		OrderID:       orderID,
		EscrowAddress: escrowAddress,
		TxSignature:   txSignature,
	}

	event, err := pkgkafka.NewEvent(TopicEscrowAttached, orderID, AggregateTypeOrder, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create order.escrow_attached event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicEscrowAttached, event); err != nil {
		return fmt.Errorf("publish order.escrow_attached event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.escrow_attached event",
		slog.String("order_id", orderID),
		slog.String("escrow_address", escrowAddress),
	)
	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ReviewID: review.ID,
		OrderID:  review.OrderID,
		SellerID: review.SellerID,
		Rating:   review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("order_id", review.OrderID),
	)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tugrulb/escrowmarket/internal/domain"
	"github.com/tugrulb/escrowmarket/internal/escrow"
	"github.com/tugrulb/escrowmarket/internal/event"
	"github.com/tugrulb/escrowmarket/internal/reconcile"
	"github.com/tugrulb/escrowmarket/internal/repository"
	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
)

// OrderService orchestrates the order lifecycle: atomic inventory reservation,
// role-gated status transitions, and the matching escrow operations on the
// external ledger.
type OrderService struct {
	orders   repository.OrderRepository
	escrow   escrow.Client
	tracker  *reconcile.Tracker
	producer *event.Producer
	feeBps   int
	logger   *slog.Logger
}

// NewOrderService creates a new order service. feeBasisPoints is the
// marketplace cut passed through to the ledger on escrow creation.
func NewOrderService(
	orders repository.OrderRepository,
	escrowClient escrow.Client,
	tracker *reconcile.Tracker,
	producer *event.Producer,
	feeBasisPoints int,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		escrow:   escrowClient,
		tracker:  tracker,
		producer: producer,
		feeBps:   feeBasisPoints,
		logger:   logger,
	}
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	BuyerID         string
	BuyerWallet     string
	ProductID       string
	Quantity        int64
	ShippingAddress string
}

// CreateOrderResult carries the committed order together with the escrow
// failure, if any. A non-nil EscrowErr means the order exists and inventory is
// reserved, but the escrow account must be attached later via RetryEscrow.
type CreateOrderResult struct {
	Order     *domain.Order
	EscrowErr *escrow.Error
}

// CreateOrder reserves inventory, persists the order, and opens the escrow
// account. The database portion is all-or-nothing; the escrow leg is
// best-effort and its failure degrades the result instead of rolling back the
// committed reservation, because compensating the decrement could race with a
// new reservation and sell the same stock twice.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.BuyerID == "" {
		return nil, apperrors.InvalidInput("buyer_id is required")
	}
	if input.BuyerWallet == "" {
		return nil, apperrors.InvalidInput("buyer_wallet is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be a positive integer")
	}
	if len(input.ShippingAddress) > domain.MaxShippingAddressLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("shipping_address must be at most %d characters", domain.MaxShippingAddressLen))
	}

	order := &domain.Order{
		ID:          uuid.New().String(),
		ProductID:   input.ProductID,
		BuyerID:     input.BuyerID,
		BuyerWallet: input.BuyerWallet,
		Quantity:    input.Quantity,
	}
	if input.ShippingAddress != "" {
		order.ShippingAddress = &input.ShippingAddress
	}

	if err := s.orders.CreateWithReservation(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	result := &CreateOrderResult{Order: order}

	receipt, err := s.escrow.Create(ctx, &escrow.CreateInput{
		OrderID:        order.ID,
		BuyerWallet:    order.BuyerWallet,
		SellerWallet:   order.SellerWallet,
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
		FeeBasisPoints: s.feeBps,
	})
	if err != nil {
		var escErr *escrow.Error
		if !errors.As(err, &escErr) {
			escErr = &escrow.Error{Kind: escrow.KindUnavailable, Message: err.Error(), Err: err}
		}
		result.EscrowErr = escErr

		s.logger.WarnContext(ctx, "order committed without escrow, queued for reconciliation",
			slog.String("order_id", order.ID),
			slog.String("escrow_error_kind", string(escErr.Kind)),
			slog.String("error", escErr.Message),
		)
		if trackErr := s.tracker.Mark(ctx, order.ID, string(escErr.Kind)); trackErr != nil {
			s.logger.ErrorContext(ctx, "failed to track pending escrow",
				slog.String("order_id", order.ID),
				slog.String("error", trackErr.Error()),
			)
		}
	} else {
		if err := s.orders.AttachEscrow(ctx, order.ID, receipt.EscrowAddress, receipt.TxSignature); err != nil {
			return nil, fmt.Errorf("attach escrow to order: %w", err)
		}
		order.EscrowAddress = &receipt.EscrowAddress
		order.EscrowTx = &receipt.TxSignature
	}

	if err := s.producer.PublishOrderCreated(ctx, order, result.EscrowErr != nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("product_id", order.ProductID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.Bool("escrow_pending", result.EscrowErr != nil),
	)

	return result, nil
}

// GetOrder retrieves an order. Only the buyer or the seller may view it.
func (s *OrderService) GetOrder(ctx context.Context, id, callerID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	if order.RoleOf(callerID) == "" {
		return nil, apperrors.Forbidden("only the buyer or seller may view this order")
	}
	return order, nil
}

// ListOrders returns the caller's orders on the given side of the trade,
// optionally filtered by status, with pagination.
func (s *OrderService) ListOrders(ctx context.Context, callerID string, role domain.Role, status *string, page, perPage int) ([]domain.Order, int, error) {
	if role != domain.RoleBuyer && role != domain.RoleSeller {
		return nil, 0, apperrors.InvalidInput("role must be BUYER or SELLER")
	}
	if status != nil && !domain.IsValidStatus(*status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", *status, strings.Join(domain.ValidStatuses(), ", ")))
	}

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	filter := repository.OrderFilter{Status: status, Page: page, PerPage: perPage}
	if role == domain.RoleBuyer {
		filter.BuyerID = &callerID
	} else {
		filter.SellerID = &callerID
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatusInput holds the parameters for a status transition request.
type UpdateStatusInput struct {
	OrderID        string
	CallerID       string
	NewStatus      string
	TrackingNumber string
	DisputeReason  string
}

// UpdateStatus validates and applies a status transition. Side effects are
// strictly ordered: local validation first, then the matching ledger call,
// then local persistence. A ledger failure fails the whole update so the local
// status never claims funds moved when they did not.
func (s *OrderService) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*domain.Order, error) {
	if !domain.IsValidStatus(input.NewStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", input.NewStatus, strings.Join(domain.ValidStatuses(), ", ")))
	}
	if len(input.TrackingNumber) > 50 {
		return nil, apperrors.InvalidInput("tracking_number must be at most 50 characters")
	}
	if len(input.DisputeReason) > 200 {
		return nil, apperrors.InvalidInput("dispute_reason must be at most 200 characters")
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	role := order.RoleOf(input.CallerID)
	if role == "" {
		return nil, apperrors.Unauthorized("caller is neither the buyer nor the seller of this order")
	}

	if err := domain.CanTransition(order.Status, input.NewStatus, role, input.TrackingNumber); err != nil {
		return nil, err
	}

	var txSignature string
	if order.HasEscrow() {
		receipt, err := s.applyEscrowAction(ctx, order, input)
		if err != nil {
			return nil, err
		}
		txSignature = receipt.TxSignature
	} else {
		// Creation-time escrow failure: the update proceeds locally and the
		// missing on-chain leg stays queued for reconciliation.
		s.logger.WarnContext(ctx, "status update without escrow leg, ledger state is behind",
			slog.String("order_id", order.ID),
			slog.String("new_status", input.NewStatus),
		)
	}

	update := repository.StatusUpdate{Status: input.NewStatus}
	if input.TrackingNumber != "" {
		update.TrackingNumber = &input.TrackingNumber
	}
	if input.DisputeReason != "" {
		update.DisputeReason = &input.DisputeReason
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, order.Status, update); err != nil {
		return nil, fmt.Errorf("persist status update: %w", err)
	}

	if err := s.producer.PublishOrderStatusChanged(ctx, order.ID, order.Status, input.NewStatus, txSignature); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("old_status", order.Status),
		slog.String("new_status", input.NewStatus),
		slog.String("role", string(role)),
	)

	order.Status = input.NewStatus
	if input.NewStatus == domain.OrderStatusShipped {
		order.TrackingNumber = &input.TrackingNumber
	}
	if input.NewStatus == domain.OrderStatusDisputed && input.DisputeReason != "" {
		order.DisputeReason = &input.DisputeReason
	}

	return order, nil
}

// applyEscrowAction maps the requested status to the corresponding ledger
// operation and classifies its failure.
func (s *OrderService) applyEscrowAction(ctx context.Context, order *domain.Order, input UpdateStatusInput) (*escrow.Receipt, error) {
	address := *order.EscrowAddress

	var (
		receipt *escrow.Receipt
		err     error
	)
	switch input.NewStatus {
	case domain.OrderStatusFunded:
		receipt, err = s.escrow.Fund(ctx, address)
	case domain.OrderStatusShipped:
		receipt, err = s.escrow.MarkShipped(ctx, address, input.TrackingNumber)
	case domain.OrderStatusCompleted:
		receipt, err = s.escrow.ConfirmDelivery(ctx, address)
	case domain.OrderStatusDisputed:
		receipt, err = s.escrow.Dispute(ctx, address, input.DisputeReason)
	case domain.OrderStatusCancelled:
		receipt, err = s.escrow.Cancel(ctx, address)
	default:
		return nil, apperrors.InvalidTransition(order.Status, input.NewStatus)
	}
	if err != nil {
		return nil, s.mapEscrowError(err)
	}
	return receipt, nil
}

// mapEscrowError converts a classified ledger failure into the application
// error taxonomy.
func (s *OrderService) mapEscrowError(err error) error {
	var escErr *escrow.Error
	if !errors.As(err, &escErr) {
		return apperrors.LedgerUnavailable(err.Error())
	}
	switch escErr.Kind {
	case escrow.KindRejected:
		return apperrors.LedgerRejected(escErr.Message)
	case escrow.KindTimeout:
		return apperrors.LedgerTimeout(escErr.Message)
	default:
		return apperrors.LedgerUnavailable(escErr.Message)
	}
}

// RetryEscrow attempts to attach the escrow account to an order whose leg
// failed at creation time. Only order parties may trigger it.
func (s *OrderService) RetryEscrow(ctx context.Context, orderID, callerID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for escrow retry: %w", err)
	}
	if order.RoleOf(callerID) == "" {
		return nil, apperrors.Forbidden("only the buyer or seller may retry escrow attachment")
	}
	if order.HasEscrow() {
		return nil, apperrors.Conflict(fmt.Sprintf("order %s already has an escrow reference", orderID))
	}
	if domain.IsTerminalStatus(order.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("order %s is in terminal status %s", orderID, order.Status))
	}

	receipt, err := s.escrow.Create(ctx, &escrow.CreateInput{
		OrderID:        order.ID,
		BuyerWallet:    order.BuyerWallet,
		SellerWallet:   order.SellerWallet,
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
		FeeBasisPoints: s.feeBps,
	})
	if err != nil {
		return nil, s.mapEscrowError(err)
	}

	if err := s.orders.AttachEscrow(ctx, order.ID, receipt.EscrowAddress, receipt.TxSignature); err != nil {
		return nil, fmt.Errorf("attach escrow to order: %w", err)
	}
	order.EscrowAddress = &receipt.EscrowAddress
	order.EscrowTx = &receipt.TxSignature

	if err := s.tracker.Clear(ctx, order.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear pending escrow tracker",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishEscrowAttached(ctx, order.ID, receipt.EscrowAddress, receipt.TxSignature); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.escrow_attached event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "escrow attached after retry",
		slog.String("order_id", order.ID),
		slog.String("escrow_address", receipt.EscrowAddress),
	)

	return order, nil
}

// PendingEscrows lists order IDs still awaiting escrow attachment.
func (s *OrderService) PendingEscrows(ctx context.Context) ([]string, error) {
	ids, err := s.tracker.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending escrows: %w", err)
	}
	return ids, nil
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tugrulb/escrowmarket/internal/domain"
	"github.com/tugrulb/escrowmarket/internal/service"
	"github.com/tugrulb/escrowmarket/pkg/httputil"
	"github.com/tugrulb/escrowmarket/pkg/middleware"
	"github.com/tugrulb/escrowmarket/pkg/pagination"
	"github.com/tugrulb/escrowmarket/pkg/validator"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateOrderRequest is the JSON request body for creating an order.
type CreateOrderRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid"`
	Quantity        int64  `json:"quantity" validate:"required,gte=1"`
	ShippingAddress string `json:"shipping_address" validate:"max=200"`
}

// UpdateStatusRequest is the JSON request body for updating order status.
type UpdateStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=FUNDED SHIPPED COMPLETED DISPUTED CANCELLED"`
	TrackingNumber string `json:"tracking_number" validate:"max=50"`
	DisputeReason  string `json:"dispute_reason" validate:"max=200"`
}

// CreateOrderResponse carries the committed order and, when the escrow call
// failed, the pending flag telling the client to retry escrow creation.
type CreateOrderResponse struct {
	Order         *domain.Order `json:"order"`
	EscrowPending bool          `json:"escrow_pending"`
	EscrowError   string        `json:"escrow_error,omitempty"`
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.CreateOrder(r.Context(), service.CreateOrderInput{
		BuyerID:         middleware.UserIDFromContext(r.Context()),
		BuyerWallet:     middleware.WalletFromContext(r.Context()),
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := CreateOrderResponse{Order: result.Order}
	if result.EscrowErr != nil {
		resp.EscrowPending = true
		resp.EscrowError = result.EscrowErr.Message
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: resp})
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = domain.RoleBuyer
	}
	if role != domain.RoleBuyer && role != domain.RoleSeller {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "role must be BUYER or SELLER"},
		})
		return
	}

	params, err := pagination.Parse(r)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: err.Error()},
		})
		return
	}

	var status *string
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}

	callerID := middleware.UserIDFromContext(r.Context())
	orders, total, err := h.service.ListOrders(r.Context(), callerID, role, status, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, params.Page, params.PerPage))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id.String(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// UpdateOrderStatus handles PUT /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), service.UpdateStatusInput{
		OrderID:        id.String(),
		CallerID:       middleware.UserIDFromContext(r.Context()),
		NewStatus:      req.Status,
		TrackingNumber: req.TrackingNumber,
		DisputeReason:  req.DisputeReason,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// RetryEscrow handles POST /api/v1/orders/{id}/escrow/retry
func (h *OrderHandler) RetryEscrow(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.service.RetryEscrow(r.Context(), id.String(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// PendingEscrows handles GET /api/v1/orders/reconcile/pending
func (h *OrderHandler) PendingEscrows(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.PendingEscrows(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ids})
}

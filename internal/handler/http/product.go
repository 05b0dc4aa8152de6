package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tugrulb/escrowmarket/internal/repository"
	"github.com/tugrulb/escrowmarket/internal/service"
	"github.com/tugrulb/escrowmarket/pkg/httputil"
	"github.com/tugrulb/escrowmarket/pkg/middleware"
	"github.com/tugrulb/escrowmarket/pkg/pagination"
	"github.com/tugrulb/escrowmarket/pkg/validator"
)

// ProductHandler handles HTTP requests for listing endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateProductRequest is the JSON request body for creating a listing.
type CreateProductRequest struct {
	Title       string `json:"title" validate:"required,max=50"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category" validate:"max=20"`
	MetadataURI string `json:"metadata_uri" validate:"max=200"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"required,gte=1"`
}

// UpdateProductRequest is the JSON request body for a partial listing update.
type UpdateProductRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Category    *string `json:"category" validate:"omitempty,max=20"`
	MetadataURI *string `json:"metadata_uri" validate:"omitempty,max=200"`
	Price       *int64  `json:"price" validate:"omitempty,gt=0"`
	Quantity    *int64  `json:"quantity" validate:"omitempty,gte=0"`
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
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

	product, err := h.service.CreateProduct(r.Context(), service.CreateProductInput{
		SellerID:     middleware.UserIDFromContext(r.Context()),
		SellerWallet: middleware.WalletFromContext(r.Context()),
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		MetadataURI:  req.MetadataURI,
		Price:        req.Price,
		Currency:     req.Currency,
		Quantity:     req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.Parse(r)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: err.Error()},
		})
		return
	}

	filter := repository.ProductFilter{Page: params.Page, PerPage: params.PerPage}
	if v := r.URL.Query().Get("seller_id"); v != "" {
		filter.SellerID = &v
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, filter.Page, filter.PerPage))
}

// UpdateProduct handles PATCH /api/v1/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateProductRequest
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

	product, err := h.service.UpdateProduct(r.Context(), service.UpdateProductInput{
		ProductID:   id.String(),
		SellerID:    middleware.UserIDFromContext(r.Context()),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		MetadataURI: req.MetadataURI,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// RemoveProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	err := h.service.RemoveProduct(r.Context(), id.String(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

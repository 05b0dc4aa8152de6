package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tugrulb/escrowmarket/internal/domain"
	"github.com/tugrulb/escrowmarket/internal/repository"
	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
)

// ProductService implements listing management.
type ProductService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{products: products, logger: logger}
}

// CreateProductInput holds the parameters for creating a listing.
type CreateProductInput struct {
	SellerID     string
	SellerWallet string
	Title        string
	Description  string
	Category     string
	MetadataURI  string
	Price        int64
	Currency     string
	Quantity     int64
}

// CreateProduct validates and persists a new listing.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.SellerID == "" {
		return nil, apperrors.InvalidInput("seller_id is required")
	}
	if input.SellerWallet == "" {
		return nil, apperrors.InvalidInput("seller_wallet is required")
	}
	if input.Title == "" || len(input.Title) > domain.MaxTitleLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("title is required and must be at most %d characters", domain.MaxTitleLen))
	}
	if len(input.Description) > domain.MaxDescriptionLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", domain.MaxDescriptionLen))
	}
	if len(input.Category) > domain.MaxCategoryLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("category must be at most %d characters", domain.MaxCategoryLen))
	}
	if len(input.MetadataURI) > domain.MaxMetadataURILen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("metadata_uri must be at most %d characters", domain.MaxMetadataURILen))
	}
	if input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be a positive integer")
	}
	if !domain.IsValidCurrency(input.Currency) {
		return nil, apperrors.InvalidInput("currency must be one of SOL, USDC, USDT")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be a positive integer")
	}

	product := &domain.Product{
		ID:           uuid.New().String(),
		SellerID:     input.SellerID,
		SellerWallet: input.SellerWallet,
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		MetadataURI:  input.MetadataURI,
		Price:        input.Price,
		Currency:     input.Currency,
		Quantity:     input.Quantity,
		Status:       domain.ProductStatusActive,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("seller_id", product.SellerID),
		slog.Int64("price", product.Price),
	)

	return product, nil
}

// GetProduct retrieves a listing by ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns listings matching the filter with pagination.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// UpdateProductInput holds the parameters for a partial listing update. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	ProductID   string
	SellerID    string
	Title       *string
	Description *string
	Category    *string
	MetadataURI *string
	Price       *int64
	Quantity    *int64
}

// UpdateProduct validates and applies a seller-gated partial update.
func (s *ProductService) UpdateProduct(ctx context.Context, input UpdateProductInput) (*domain.Product, error) {
	if input.SellerID == "" {
		return nil, apperrors.InvalidInput("seller_id is required")
	}
	if input.Title != nil && (*input.Title == "" || len(*input.Title) > domain.MaxTitleLen) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("title must be non-empty and at most %d characters", domain.MaxTitleLen))
	}
	if input.Description != nil && len(*input.Description) > domain.MaxDescriptionLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", domain.MaxDescriptionLen))
	}
	if input.Category != nil && len(*input.Category) > domain.MaxCategoryLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("category must be at most %d characters", domain.MaxCategoryLen))
	}
	if input.MetadataURI != nil && len(*input.MetadataURI) > domain.MaxMetadataURILen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("metadata_uri must be at most %d characters", domain.MaxMetadataURILen))
	}
	if input.Price != nil && *input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be a positive integer")
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}

	product, err := s.products.Update(ctx, input.ProductID, input.SellerID, repository.ProductUpdate{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		MetadataURI: input.MetadataURI,
		Price:       input.Price,
		Quantity:    input.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
		slog.String("seller_id", product.SellerID),
	)

	return product, nil
}

// RemoveProduct marks a listing as removed. Only its seller may remove it.
func (s *ProductService) RemoveProduct(ctx context.Context, id, sellerID string) error {
	if err := s.products.Remove(ctx, id, sellerID); err != nil {
		return fmt.Errorf("remove product: %w", err)
	}

	s.logger.InfoContext(ctx, "product removed",
		slog.String("product_id", id),
		slog.String("seller_id", sellerID),
	)
	return nil
}

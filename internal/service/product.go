package service

import (
	"context"
	"log/slog"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/internal/repository"
	apperrors "github.com/Aphidet6/earth-bettashop/pkg/errors"
	"github.com/Aphidet6/earth-bettashop/pkg/validator"
)

// ProductService implements catalog business logic with seller ownership
// enforcement.
type ProductService struct {
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string  `json:"name" validate:"required,min=2,max=255"`
	Description   string  `json:"description" validate:"max=5000"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	CategoryID    *int64  `json:"category_id"`
	ImageURL      string  `json:"image_url" validate:"omitempty,url"`
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name          *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Description   *string  `json:"description" validate:"omitempty,max=5000"`
	Price         *float64 `json:"price" validate:"omitempty,gt=0"`
	StockQuantity *int     `json:"stock_quantity" validate:"omitempty,gte=0"`
	CategoryID    *int64   `json:"category_id"`
	ImageURL      *string  `json:"image_url" validate:"omitempty,url"`
	IsActive      *bool    `json:"is_active"`
}

// Create adds a product owned by the caller.
func (s *ProductService) Create(ctx context.Context, caller *domain.User, input CreateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	product := &domain.Product{
		SellerID:      caller.ID,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		CategoryID:    input.CategoryID,
		ImageURL:      input.ImageURL,
		IsActive:      true,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.Int64("seller_id", caller.ID),
	)

	return product, nil
}

// Get returns a single product.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// List returns products matching the filter.
func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.productRepo.List(ctx, filter)
}

// Update modifies a product. Only the owning seller or an admin may update.
func (s *ProductService) Update(ctx context.Context, caller *domain.User, id int64, input UpdateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.SellerID != caller.ID && caller.Role != domain.RoleAdmin {
		return nil, apperrors.Forbidden("forbidden")
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product. Only the owning seller or an admin may delete.
func (s *ProductService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if product.SellerID != caller.ID && caller.Role != domain.RoleAdmin {
		return apperrors.Forbidden("forbidden")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
		slog.Int64("caller_id", caller.ID),
	)

	return nil
}

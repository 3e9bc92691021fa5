package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/internal/repository"
	apperrors "github.com/Aphidet6/earth-bettashop/pkg/errors"
	"github.com/Aphidet6/earth-bettashop/pkg/validator"
)

// OrderService implements order business logic with owner-or-admin access.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, logger *slog.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	ShippingAddress map[string]any   `json:"shipping_address"`
}

// Create places an order for the caller. Item prices are captured from the
// current catalog; the repository computes the total inside the same
// transaction as the inserts.
func (s *OrderService) Create(ctx context.Context, caller *domain.User, input CreateOrderInput) (*domain.Order, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		product, err := s.productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, apperrors.InvalidInput(fmt.Sprintf("product %d is not available", in.ProductID))
		}
		if product.StockQuantity < in.Quantity {
			return nil, apperrors.InvalidInput(fmt.Sprintf("insufficient stock for product %d", in.ProductID))
		}
		items = append(items, domain.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     product.Price,
		})
	}

	order := &domain.Order{
		UserID:          caller.ID,
		Status:          domain.OrderStatusCreated,
		ShippingAddress: input.ShippingAddress,
		Items:           items,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order created",
		slog.Int64("order_id", order.ID),
		slog.Int64("user_id", caller.ID),
		slog.Float64("total", order.TotalAmount),
	)

	return order, nil
}

// Get returns an order. Only the owner or an admin may view it.
func (s *OrderService) Get(ctx context.Context, caller *domain.User, id int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID != caller.ID && caller.Role != domain.RoleAdmin {
		return nil, apperrors.Forbidden("forbidden")
	}

	return order, nil
}

// List returns the caller's orders, or every order for an admin.
func (s *OrderService) List(ctx context.Context, caller *domain.User) ([]domain.Order, error) {
	if caller.Role == domain.RoleAdmin {
		return s.orderRepo.List(ctx)
	}
	return s.orderRepo.ListByUserID(ctx, caller.ID)
}

// UpdateStatus sets an order's status. Route-level gating restricts this to
// admins; the status value is still validated here.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.Int64("order_id", id),
		slog.String("status", status),
	)

	return s.orderRepo.GetByID(ctx, id)
}

package repository

import (
	"context"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
)

// UserRepository defines the persistence contract for users and their
// external provider mappings.
type UserRepository interface {
	// Create inserts a new user and fills in its generated id and timestamps.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id int64) error

	// GetByProvider retrieves the user linked to an external provider account.
	GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error)

	// LinkProvider records a mapping from a provider account to an existing
	// user. A concurrent duplicate insert of the same mapping is not an error.
	LinkProvider(ctx context.Context, mapping *domain.ProviderMapping) error

	// CreateWithProvider atomically creates a user together with its provider
	// mapping and fills in the generated user id.
	CreateWithProvider(ctx context.Context, user *domain.User, mapping *domain.ProviderMapping) error
}

// ProductRepository defines the persistence contract for catalog products.
type ProductRepository interface {
	// Create inserts a new product and fills in its generated id.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// List returns products matching the filter, newest first.
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id int64) error
}

// OrderRepository defines the persistence contract for orders.
type OrderRepository interface {
	// Create atomically inserts an order with its items and computed total,
	// filling in the generated ids.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// ListByUserID returns a user's orders, newest first, without items.
	ListByUserID(ctx context.Context, userID int64) ([]domain.Order, error)

	// List returns all orders, newest first, without items.
	List(ctx context.Context) ([]domain.Order, error)

	// UpdateStatus sets an order's status.
	UpdateStatus(ctx context.Context, id int64, status string) error
}

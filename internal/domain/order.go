package domain

import "time"

// Order status values.
const (
	OrderStatusCreated   = "created"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// Order represents a customer order with its line items.
type Order struct {
	ID              int64          `json:"id"`
	UserID          int64          `json:"user_id"`
	Status          string         `json:"status"`
	TotalAmount     float64        `json:"total_amount"`
	ShippingAddress map[string]any `json:"shipping_address,omitempty"`
	Items           []OrderItem    `json:"items,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// OrderItem is a single line of an order. Price is captured at order time.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// IsValidOrderStatus checks whether the given status is one an admin may set.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusCreated, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

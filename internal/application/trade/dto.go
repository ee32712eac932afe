package trade

import (
	"time"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/trade"
)

// CreateOrderRequest is the body of an order placement. Items is validated by
// the placement itself so that an empty cart yields the cart error.
type CreateOrderRequest struct {
	CustomerName  string           `json:"customer_name" binding:"max=200"`
	CustomerEmail string           `json:"customer_email" binding:"omitempty,email,max=254"`
	Items         []OrderLineInput `json:"items" binding:"dive"`
}

// OrderLineInput is one cart line
type OrderLineInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// PlaceOrderCommand carries a validated cart and the identity placing it
type PlaceOrderCommand struct {
	Lines    []OrderLineInput
	Customer trade.Customer
	// IdempotencyKey deduplicates client retries when set
	IdempotencyKey string
}

// PlaceOrderResult is the outcome of a placement
type PlaceOrderResult struct {
	Order OrderResponse
	// Replayed is true when the order was created by an earlier request with
	// the same idempotency key
	Replayed bool
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID        int64                       `json:"id"`
	Product   *appcatalog.ProductResponse `json:"product"`
	Quantity  int                         `json:"quantity"`
	UnitPrice string                      `json:"unit_price"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            int64               `json:"id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	Status        string              `json:"status"`
	TotalPrice    string              `json:"total_price"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []OrderItemResponse `json:"items"`
}

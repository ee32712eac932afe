package trade

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create inserts the order row. Items are added separately with AddItem.
	Create(ctx context.Context, order *Order) error

	// AddItem inserts one order item and assigns its ID
	AddItem(ctx context.Context, item *OrderItem) error

	// UpdateTotal writes the final total of a freshly created order
	UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal) error

	// FindByID loads an order with its items and their products
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindAll lists orders newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)

	// FindByUser lists the orders owned by a user, newest first
	FindByUser(ctx context.Context, userID int64, filter shared.Filter) ([]Order, int64, error)

	// Delete deletes an order. Its items are removed with it.
	Delete(ctx context.Context, id int64) error
}

// StockLedger owns the mutable stock count of products
type StockLedger interface {
	// Reserve atomically takes qty units of an active product and returns the
	// product as it is after the decrement. It fails with *ProductNotFoundError
	// when the product is missing or inactive and with *InsufficientStockError
	// when fewer than qty units remain. Stock is never left negative.
	Reserve(ctx context.Context, productID int64, qty int) (*catalog.Product, error)
}

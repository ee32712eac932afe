package trade

import (
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
)

// PlacementError is implemented by every error that rejects a cart.
// All of them are the caller's to fix and none leaves a partial order behind.
type PlacementError interface {
	shared.Classified
	Code() string
	// ProductRef returns the offending product id, or 0 when no line is at fault
	ProductRef() int64
}

// IsPlacementError reports whether err rejects the cart
func IsPlacementError(err error) bool {
	var pe PlacementError
	return errors.As(err, &pe)
}

// EmptyCartError is returned when an order has no lines
type EmptyCartError struct{}

func (e *EmptyCartError) Error() string           { return "No items provided." }
func (e *EmptyCartError) Kind() shared.ErrorKind { return shared.KindValidation }
func (e *EmptyCartError) Code() string           { return "EMPTY_CART" }
func (e *EmptyCartError) ProductRef() int64      { return 0 }

// InvalidQuantityError is returned for a line whose quantity is not positive
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("Invalid quantity %d for product with id %d.", e.Quantity, e.ProductID)
}
func (e *InvalidQuantityError) Kind() shared.ErrorKind { return shared.KindValidation }
func (e *InvalidQuantityError) Code() string           { return "INVALID_QUANTITY" }
func (e *InvalidQuantityError) ProductRef() int64      { return e.ProductID }

// ProductNotFoundError is returned when a line names a missing or inactive product
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product with id %d not found.", e.ProductID)
}
func (e *ProductNotFoundError) Kind() shared.ErrorKind { return shared.KindNotFound }
func (e *ProductNotFoundError) Code() string           { return "PRODUCT_NOT_FOUND" }
func (e *ProductNotFoundError) ProductRef() int64      { return e.ProductID }

// InsufficientStockError is returned when a product has fewer units than requested.
// Available is the stock observed inside the placing transaction.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product with id %d", e.ProductID)
	}
	return fmt.Sprintf("Not enough stock for %s (requested %d, available %d).", name, e.Requested, e.Available)
}
func (e *InsufficientStockError) Kind() shared.ErrorKind { return shared.KindConflict }
func (e *InsufficientStockError) Code() string           { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) ProductRef() int64      { return e.ProductID }

var (
	_ PlacementError = (*EmptyCartError)(nil)
	_ PlacementError = (*InvalidQuantityError)(nil)
	_ PlacementError = (*ProductNotFoundError)(nil)
	_ PlacementError = (*InsufficientStockError)(nil)
)

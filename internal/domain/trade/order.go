package trade

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPaid || target == OrderStatusCancelled
	case OrderStatusPaid:
		return target == OrderStatusShipped
	case OrderStatusShipped:
		return target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Customer identifies who placed an order. UserID is nil for anonymous orders.
type Customer struct {
	UserID *int64
	Name   string
	Email  string
}

// IsAnonymous reports whether the order has no owning user
func (c Customer) IsAnonymous() bool {
	return c.UserID == nil
}

// OrderItem is one line of an order. UnitPrice is the product price at the
// moment the order was placed and never changes afterwards.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal

	Product *catalog.Product
}

// LineTotal returns quantity * unit price
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate root for a placed customer order.
// TotalPrice is written once while the order is assembled and equals the sum
// of its item line totals.
type Order struct {
	shared.BaseAggregateRoot
	UserID        *int64
	CustomerName  string
	CustomerEmail string
	Status        OrderStatus
	TotalPrice    decimal.Decimal
	Items         []OrderItem

	running valueobject.Money
}

// NewOrder creates an empty pending order shell for the given customer
func NewOrder(customer Customer) *Order {
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            customer.UserID,
		CustomerName:      customer.Name,
		CustomerEmail:     customer.Email,
		Status:            OrderStatusPending,
		TotalPrice:        decimal.Zero,
		Items:             make([]OrderItem, 0),
		running:           valueobject.Zero(valueobject.DefaultCurrency),
	}
}

// AddItem appends a line for product, snapshotting its current price, and
// accumulates the order total. The caller has already reserved the stock.
func (o *Order) AddItem(product *catalog.Product, quantity int) (*OrderItem, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending order")
	}
	if product == nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if quantity <= 0 {
		return nil, &InvalidQuantityError{ProductID: product.ID, Quantity: quantity}
	}

	item := OrderItem{
		OrderID:   o.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		Product:   product,
	}

	if o.running.Currency() == "" {
		o.running = valueobject.FromDecimal(o.TotalPrice)
	}
	o.running = o.running.MustAdd(valueobject.FromDecimal(item.UnitPrice).MultiplyByInt(int64(quantity)))
	o.TotalPrice = o.running.Amount()
	o.Items = append(o.Items, item)
	o.UpdatedAt = time.Now()

	return &o.Items[len(o.Items)-1], nil
}

// ComputedTotal sums the line totals of the current items
func (o *Order) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount returns the number of units across all lines
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// MarkPlaced records the placement event once the order has an ID
func (o *Order) MarkPlaced() {
	o.AddDomainEvent(NewOrderPlacedEvent(o))
}

// Pay moves a pending order to paid
func (o *Order) Pay() error {
	return o.transition(OrderStatusPaid)
}

// Ship moves a paid order to shipped
func (o *Order) Ship() error {
	return o.transition(OrderStatusShipped)
}

// Complete moves a shipped order to completed
func (o *Order) Complete() error {
	return o.transition(OrderStatusCompleted)
}

// Cancel cancels a pending order
func (o *Order) Cancel() error {
	return o.transition(OrderStatusCancelled)
}

func (o *Order) transition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

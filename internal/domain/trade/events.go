package trade

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeOrderPlaced = "OrderPlaced"
	AggregateTypeOrder   = "Order"
)

// OrderPlacedLine is a line snapshot carried by OrderPlacedEvent
type OrderPlacedLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderPlacedEvent is raised after an order and its stock decrements commit
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID    int64             `json:"order_id"`
	UserID     *int64            `json:"user_id,omitempty"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Lines      []OrderPlacedLine `json:"lines"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	lines := make([]OrderPlacedLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = OrderPlacedLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		TotalPrice:      o.TotalPrice,
		Lines:           lines,
	}
}

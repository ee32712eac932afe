package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// OrderModel is the persistence model for the Order aggregate.
type OrderModel struct {
	BaseModel
	UserID        *int64            `gorm:"index"`
	CustomerName  string            `gorm:"type:varchar(200);not null;default:''"`
	CustomerEmail string            `gorm:"type:varchar(254);not null;default:''"`
	Status        trade.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalPrice    decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0"`

	User *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`

	// AutoMigrate builds the order_items foreign key from this side of the
	// relation, so the cascade rule lives here.
	Items []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order. Items are
// included when they were preloaded.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain()},
		UserID:            m.UserID,
		CustomerName:      m.CustomerName,
		CustomerEmail:     m.CustomerEmail,
		Status:            m.Status,
		TotalPrice:        m.TotalPrice,
		Items:             make([]trade.OrderItem, 0, len(m.Items)),
	}
	for i := range m.Items {
		o.Items = append(o.Items, *m.Items[i].ToDomain())
	}
	return o
}

// FromDomain populates the persistence model from a domain Order. Items are
// persisted separately.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.UserID = o.UserID
	m.CustomerName = o.CustomerName
	m.CustomerEmail = o.CustomerEmail
	m.Status = o.Status
	m.TotalPrice = o.TotalPrice
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line. UnitPrice is
// the product price captured at placement and never rewritten.
type OrderItemModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"not null;index"`
	ProductID int64           `gorm:"not null;index"`
	Quantity  int             `gorm:"not null;check:chk_order_items_quantity_positive,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(8,2);not null"`

	Order   *OrderModel   `gorm:"foreignKey:OrderID"`
	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() *trade.OrderItem {
	item := &trade.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
	}
	if m.Product != nil {
		item.Product = m.Product.ToDomain()
	}
	return item
}

// OrderItemModelFromDomain creates a new persistence model from a domain OrderItem.
func OrderItemModelFromDomain(item *trade.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:        item.ID,
		OrderID:   item.OrderID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	}
}

package persistence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order row and assigns its ID
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Omit("User", "Items").Create(model).Error; err != nil {
		return shared.NewPersistenceError("create order", err)
	}
	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	return nil
}

// AddItem inserts one order line and assigns its ID
func (r *GormOrderRepository) AddItem(ctx context.Context, item *trade.OrderItem) error {
	model := models.OrderItemModelFromDomain(item)
	if err := r.db.WithContext(ctx).Omit("Order", "Product").Create(model).Error; err != nil {
		return shared.NewPersistenceError("create order item", err)
	}
	item.ID = model.ID
	return nil
}

// UpdateTotal writes the final total of an order
func (r *GormOrderRepository) UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"total_price": total,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return shared.NewPersistenceError("update order total", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID loads an order with its items and their products
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "find order")
	}
	return model.ToDomain(), nil
}

// FindAll lists orders, newest first unless the filter names another sort field
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
}

// FindByUser lists the orders owned by a user
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID int64, filter shared.Filter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("user_id = ?", userID)
	return r.list(ctx, query, filter)
}

// Delete deletes an order; the order_items foreign key cascades to its lines
func (r *GormOrderRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return shared.NewPersistenceError("delete order", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormOrderRepository) list(ctx context.Context, query *gorm.DB, filter shared.Filter) ([]trade.Order, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, shared.NewPersistenceError("count orders", err)
	}

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	sortDir := ValidateSortOrder(filter.OrderDir)
	query = query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Brand").
		Preload("Items.Product.Category").
		Order(sortField + " " + sortDir + ", id " + sortDir)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, shared.NewPersistenceError("list orders", err)
	}

	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Brand").
		Preload("Items.Product.Category")
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)

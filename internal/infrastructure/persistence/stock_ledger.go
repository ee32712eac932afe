package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLedger implements trade.StockLedger with a conditional decrement.
//
// The UPDATE re-checks "stock >= qty" against the latest committed row
// version after taking the row lock, so concurrent reservations of the same
// product serialize on that row and stock can never go negative.
type GormStockLedger struct {
	db *gorm.DB
}

// NewGormStockLedger creates a new GormStockLedger
func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// Reserve takes qty units of an active product
func (l *GormStockLedger) Reserve(ctx context.Context, productID int64, qty int) (*catalog.Product, error) {
	if qty <= 0 {
		return nil, &trade.InvalidQuantityError{ProductID: productID, Quantity: qty}
	}

	result := l.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND is_active = ? AND stock >= ?", productID, true, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, shared.NewPersistenceError("reserve stock", result.Error)
	}

	product, err := l.load(ctx, productID, result.RowsAffected == 0)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, &trade.ProductNotFoundError{ProductID: productID}
		}
		return nil, err
	}

	if result.RowsAffected == 0 {
		if !product.IsActive {
			return nil, &trade.ProductNotFoundError{ProductID: productID}
		}
		return nil, &trade.InsufficientStockError{
			ProductID:   productID,
			ProductName: product.Name,
			Requested:   qty,
			Available:   product.Stock,
		}
	}
	return product, nil
}

// load reads the product row. After a refused decrement the row is read under
// FOR UPDATE on PostgreSQL so the reported stock is the value that refused it.
func (l *GormStockLedger) load(ctx context.Context, productID int64, lock bool) (*catalog.Product, error) {
	query := l.db.WithContext(ctx).Preload("Brand").Preload("Category")
	if lock && l.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model models.ProductModel
	if err := query.First(&model, "id = ?", productID).Error; err != nil {
		return nil, wrapNotFound(err, "read product stock")
	}
	return model.ToDomain(), nil
}

// Ensure GormStockLedger implements StockLedger
var _ trade.StockLedger = (*GormStockLedger)(nil)

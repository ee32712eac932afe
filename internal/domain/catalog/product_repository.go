package catalog

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// Product orderings accepted by ListProducts. Anything else falls back to id order.
const (
	OrderingPriceAsc      = "price"
	OrderingPriceDesc     = "-price"
	OrderingCreatedAtAsc  = "created_at"
	OrderingCreatedAtDesc = "-created_at"
)

// AllowedOrderings is the sort whitelist for product listings
var AllowedOrderings = map[string]bool{
	OrderingPriceAsc:      true,
	OrderingPriceDesc:     true,
	OrderingCreatedAtAsc:  true,
	OrderingCreatedAtDesc: true,
}

// ProductFilter narrows a product listing. All set fields are AND-combined;
// Search matches name, short or long description case-insensitively.
type ProductFilter struct {
	CategoryID *int64
	BrandID    *int64
	Search     string
	Ordering   string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID regardless of its active flag
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindBySlug finds a product by slug, optionally restricted to active products
	FindBySlug(ctx context.Context, slug string, activeOnly bool) (*Product, error)

	// FindAll returns one page of products matching the filter plus the total count
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)

	// Save creates or updates a product. The slug of an existing product is never rewritten.
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product. It fails while any order item references it.
	Delete(ctx context.Context, id int64) error

	// ExistsBySlug checks if a product with the given slug exists
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	Save(ctx context.Context, category *Category) error
}

// BrandRepository defines the interface for brand persistence
type BrandRepository interface {
	FindAll(ctx context.Context) ([]Brand, error)
	FindByName(ctx context.Context, name string) (*Brand, error)
	Save(ctx context.Context, brand *Brand) error
}

// ErrProductInUse is returned when deleting a product that order items reference
var ErrProductInUse = shared.NewClassifiedError(shared.KindConflict, "PRODUCT_IN_USE", "Product is referenced by existing orders")

package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Field limits mirrored by the database schema
const (
	MaxProductNameLength      = 200
	MaxProductSlugLength      = 220
	MaxShortDescriptionLength = 255
	// MaxPrice is the largest value a decimal(8,2) price column holds
	MaxPrice = "999999.99"
)

// Product represents a sellable item in the catalog.
// Price is fixed-point with two decimal places and Stock never goes negative.
// The order engine is the only writer of Stock once a product exists.
type Product struct {
	shared.BaseAggregateRoot
	Name             string
	Slug             string
	BrandID          int64
	CategoryID       int64
	Price            decimal.Decimal
	Stock            int
	MainImage        string
	ImageKey         string
	ShortDescription string
	LongDescription  string
	IsActive         bool

	Brand    *Brand
	Category *Category
}

// NewProduct creates a new active product. An empty slug is derived from the name.
func NewProduct(name, slug string, brandID, categoryID int64, price decimal.Decimal, stock int) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = Slugify(name)
	}
	if err := ValidateSlug(slug, MaxProductSlugLength); err != nil {
		return nil, err
	}
	if brandID <= 0 {
		return nil, shared.NewDomainError("INVALID_BRAND", "Product brand is required")
	}
	if categoryID <= 0 {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		BrandID:           brandID,
		CategoryID:        categoryID,
		Price:             price.Round(2),
		Stock:             stock,
		IsActive:          true,
	}, nil
}

// SetDescriptions sets the short and long descriptions
func (p *Product) SetDescriptions(short, long string) error {
	if len(short) > MaxShortDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Short description cannot exceed 255 characters")
	}
	p.ShortDescription = short
	p.LongDescription = long
	p.UpdatedAt = time.Now()
	return nil
}

// SetImages sets the external image URL and the object storage key
func (p *Product) SetImages(mainImage, imageKey string) {
	p.MainImage = mainImage
	p.ImageKey = imageKey
	p.UpdatedAt = time.Now()
}

// ChangePrice updates the list price. Existing order items keep their snapshot.
func (p *Product) ChangePrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	p.Price = price.Round(2)
	p.UpdatedAt = time.Now()
	return nil
}

// Activate makes the product orderable
func (p *Product) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}

// Deactivate hides the product from listings and rejects new orders for it
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

// CanFulfil reports whether qty units can be taken from stock right now
func (p *Product) CanFulfil(qty int) bool {
	return p.IsActive && qty > 0 && p.Stock >= qty
}

// ImageURL returns the external image URL when no stored image exists.
// Stored images are resolved by the application layer.
func (p *Product) ImageURL() string {
	return p.MainImage
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > MaxProductNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if price.GreaterThan(decimal.RequireFromString(MaxPrice)) {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot exceed "+MaxPrice)
	}
	return nil
}

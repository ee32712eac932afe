package catalog

import (
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductListQuery carries the query parameters of a product listing
type ProductListQuery struct {
	CategoryID *int64
	BrandID    *int64
	Search     string
	Ordering   string
	Page       int
	PageSize   int
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// BrandResponse represents a brand in API responses
type BrandResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website"`
}

// ProductResponse represents a product in API responses.
// Price is rendered with exactly two decimals.
type ProductResponse struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	Brand            *BrandResponse    `json:"brand"`
	Category         *CategoryResponse `json:"category"`
	Price            string            `json:"price"`
	Stock            int               `json:"stock"`
	MainImage        string            `json:"main_image"`
	Image            string            `json:"image"`
	ShortDescription string            `json:"short_description"`
	LongDescription  string            `json:"long_description"`
	IsActive         bool              `json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ProductPage is one page of a product listing
type ProductPage = shared.Paginated[ProductResponse]

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

// ToBrandResponse converts a domain Brand to BrandResponse
func ToBrandResponse(b *catalog.Brand) BrandResponse {
	return BrandResponse{ID: b.ID, Name: b.Name, Website: b.Website}
}

// ToProductResponse converts a domain Product to ProductResponse. image is the
// resolved display URL.
func ToProductResponse(p *catalog.Product, image string) ProductResponse {
	resp := ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		Price:            p.Price.StringFixed(2),
		Stock:            p.Stock,
		MainImage:        p.MainImage,
		Image:            image,
		ShortDescription: p.ShortDescription,
		LongDescription:  p.LongDescription,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Brand != nil {
		b := ToBrandResponse(p.Brand)
		resp.Brand = &b
	}
	if p.Category != nil {
		c := ToCategoryResponse(p.Category)
		resp.Category = &c
	}
	return resp
}

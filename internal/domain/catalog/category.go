package catalog

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Category groups products for browsing
type Category struct {
	ID   int64
	Name string
	Slug string
}

// NewCategory creates a category. An empty slug is derived from the name.
func NewCategory(name, slug string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	if slug == "" {
		slug = Slugify(name)
	}
	if err := ValidateSlug(slug, 120); err != nil {
		return nil, err
	}
	return &Category{Name: name, Slug: slug}, nil
}

// Brand is the manufacturer of a product
type Brand struct {
	ID      int64
	Name    string
	Website string
}

// NewBrand creates a brand
func NewBrand(name, website string) (*Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Brand name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Brand name cannot exceed 100 characters")
	}
	website = strings.TrimSpace(website)
	if website != "" && !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		return nil, shared.NewDomainError("INVALID_WEBSITE", "Brand website must be an http(s) URL")
	}
	return &Brand{Name: name, Website: website}, nil
}

package catalog

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ImageURLResolver turns an object-storage key into a URL a browser can load
type ImageURLResolver interface {
	ResolveImageURL(ctx context.Context, key string) (string, error)
}

// ProductService serves the read side of the catalog
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	brandRepo    catalog.BrandRepository
	images       ImageURLResolver
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	brandRepo catalog.BrandRepository,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		logger:       logger,
	}
}

// SetImageResolver sets the resolver used for products that carry an image key
func (s *ProductService) SetImageResolver(resolver ImageURLResolver) {
	s.images = resolver
}

// ListCategories returns all categories
func (s *ProductService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// ListBrands returns all brands
func (s *ProductService) ListBrands(ctx context.Context) ([]BrandResponse, error) {
	brands, err := s.brandRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BrandResponse, len(brands))
	for i := range brands {
		out[i] = ToBrandResponse(&brands[i])
	}
	return out, nil
}

// ListProducts returns one page of active products matching the query
func (s *ProductService) ListProducts(ctx context.Context, query ProductListQuery) (*ProductPage, error) {
	pageFilter := shared.Filter{Page: query.Page, PageSize: query.PageSize}
	pageFilter.Normalize()

	products, total, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		CategoryID: query.CategoryID,
		BrandID:    query.BrandID,
		Search:     query.Search,
		Ordering:   query.Ordering,
		ActiveOnly: true,
		Page:       pageFilter.Page,
		PageSize:   pageFilter.PageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = s.Present(ctx, &products[i])
	}
	page := shared.NewPaginated(items, total, pageFilter.Page, pageFilter.PageSize)
	return &page, nil
}

// GetProductBySlug returns an active product by slug
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	resp := s.Present(ctx, product)
	return &resp, nil
}

// GetProductByID returns a product by ID regardless of its active flag
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.Present(ctx, product)
	return &resp, nil
}

// Present converts a product into its API shape, resolving the display image.
// A stored image key wins over main_image; when signing fails the product is
// still returned with main_image.
func (s *ProductService) Present(ctx context.Context, p *catalog.Product) ProductResponse {
	return ToProductResponse(p, s.imageURL(ctx, p))
}

func (s *ProductService) imageURL(ctx context.Context, p *catalog.Product) string {
	if p.ImageKey == "" || s.images == nil {
		return p.ImageURL()
	}
	url, err := s.images.ResolveImageURL(ctx, p.ImageKey)
	if err != nil {
		s.logger.Warn("Failed to resolve product image",
			zap.Int64("product_id", p.ID),
			zap.String("image_key", p.ImageKey),
			zap.Error(err))
		return p.ImageURL()
	}
	return url
}

package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ImageUploader stores product images. Implemented by storage.S3ImageStore.
type ImageUploader interface {
	ObjectExists(ctx context.Context, key string) (bool, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Report counts what a seed run did
type Report struct {
	CategoriesCreated int
	BrandsCreated     int
	ProductsCreated   int
	ProductsSkipped   int
	ImagesUploaded    int
}

// Seeder loads a fixture into the catalog tables. Existing rows are matched
// by slug (categories, products) or name (brands) and left untouched, so
// running it twice is harmless.
type Seeder struct {
	categories catalog.CategoryRepository
	brands     catalog.BrandRepository
	products   catalog.ProductRepository
	images     ImageUploader
	baseDir    string
	logger     *zap.Logger
}

// NewSeeder creates a seeder. images may be nil, in which case image files
// in the fixture are ignored.
func NewSeeder(
	categories catalog.CategoryRepository,
	brands catalog.BrandRepository,
	products catalog.ProductRepository,
	images ImageUploader,
	baseDir string,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		categories: categories,
		brands:     brands,
		products:   products,
		images:     images,
		baseDir:    baseDir,
		logger:     logger,
	}
}

// Run seeds categories, brands and products in that order
func (s *Seeder) Run(ctx context.Context, f *Fixture) (Report, error) {
	var report Report

	categoryIDs := make(map[string]int64)
	for _, cf := range f.Categories {
		category, created, err := s.ensureCategory(ctx, cf)
		if err != nil {
			return report, err
		}
		if created {
			report.CategoriesCreated++
		}
		categoryIDs[category.Slug] = category.ID
		categoryIDs[strings.ToLower(category.Name)] = category.ID
	}

	brandIDs := make(map[string]int64)
	for _, bf := range f.Brands {
		brand, created, err := s.ensureBrand(ctx, bf)
		if err != nil {
			return report, err
		}
		if created {
			report.BrandsCreated++
		}
		brandIDs[strings.ToLower(brand.Name)] = brand.ID
	}

	for _, pf := range f.Products {
		categoryID, ok := categoryIDs[pf.Category]
		if !ok {
			categoryID, ok = categoryIDs[strings.ToLower(pf.Category)]
		}
		if !ok {
			return report, fmt.Errorf("product %q: unknown category %q", pf.Name, pf.Category)
		}
		brandID, ok := brandIDs[strings.ToLower(pf.Brand)]
		if !ok {
			return report, fmt.Errorf("product %q: unknown brand %q", pf.Name, pf.Brand)
		}

		created, uploaded, err := s.ensureProduct(ctx, pf, brandID, categoryID)
		if err != nil {
			return report, err
		}
		if created {
			report.ProductsCreated++
		} else {
			report.ProductsSkipped++
		}
		if uploaded {
			report.ImagesUploaded++
		}
	}

	return report, nil
}

func (s *Seeder) ensureCategory(ctx context.Context, cf CategoryFixture) (*catalog.Category, bool, error) {
	category, err := catalog.NewCategory(cf.Name, cf.Slug)
	if err != nil {
		return nil, false, fmt.Errorf("category %q: %w", cf.Name, err)
	}

	existing, err := s.categories.FindBySlug(ctx, category.Slug)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, false, fmt.Errorf("save category %q: %w", cf.Name, err)
	}
	s.logger.Info("Category created", zap.String("slug", category.Slug), zap.Int64("id", category.ID))
	return category, true, nil
}

func (s *Seeder) ensureBrand(ctx context.Context, bf BrandFixture) (*catalog.Brand, bool, error) {
	brand, err := catalog.NewBrand(bf.Name, bf.Website)
	if err != nil {
		return nil, false, fmt.Errorf("brand %q: %w", bf.Name, err)
	}

	existing, err := s.brands.FindByName(ctx, brand.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	if err := s.brands.Save(ctx, brand); err != nil {
		return nil, false, fmt.Errorf("save brand %q: %w", bf.Name, err)
	}
	s.logger.Info("Brand created", zap.String("name", brand.Name), zap.Int64("id", brand.ID))
	return brand, true, nil
}

func (s *Seeder) ensureProduct(ctx context.Context, pf ProductFixture, brandID, categoryID int64) (created, uploaded bool, err error) {
	price, err := decimal.NewFromString(pf.Price)
	if err != nil {
		return false, false, fmt.Errorf("product %q: invalid price: %w", pf.Name, err)
	}
	product, err := catalog.NewProduct(pf.Name, pf.Slug, brandID, categoryID, price, pf.Stock)
	if err != nil {
		return false, false, fmt.Errorf("product %q: %w", pf.Name, err)
	}

	exists, err := s.products.ExistsBySlug(ctx, product.Slug)
	if err != nil {
		return false, false, err
	}
	if exists {
		s.logger.Debug("Product already present", zap.String("slug", product.Slug))
		return false, false, nil
	}

	if err := product.SetDescriptions(pf.ShortDescription, pf.LongDescription); err != nil {
		return false, false, fmt.Errorf("product %q: %w", pf.Name, err)
	}

	imageKey := ""
	if pf.ImageFile != "" && s.images != nil {
		imageKey, uploaded, err = s.uploadImage(ctx, product.Slug, pf.ImageFile)
		if err != nil {
			return false, false, fmt.Errorf("product %q: %w", pf.Name, err)
		}
	}
	product.SetImages(pf.MainImage, imageKey)
	if pf.Inactive {
		product.Deactivate()
	}

	if err := s.products.Save(ctx, product); err != nil {
		return false, false, fmt.Errorf("save product %q: %w", pf.Name, err)
	}
	s.logger.Info("Product created",
		zap.String("slug", product.Slug),
		zap.Int64("id", product.ID),
		zap.Int("stock", product.Stock),
	)
	return true, uploaded, nil
}

// uploadImage stores the file under products/<slug><ext> unless that key
// already exists
func (s *Seeder) uploadImage(ctx context.Context, slug, file string) (string, bool, error) {
	ext := strings.ToLower(filepath.Ext(file))
	key := "products/" + slug + ext

	exists, err := s.images.ObjectExists(ctx, key)
	if err != nil {
		return "", false, err
	}
	if exists {
		return key, false, nil
	}

	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("read image: %w", err)
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.images.Upload(ctx, key, data, contentType); err != nil {
		return "", false, err
	}
	s.logger.Info("Image uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, true, nil
}

package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindAll returns every category ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("list categories", err)
	}
	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// FindBySlug finds a category by slug
func (r *GormCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		return nil, wrapNotFound(err, "find category")
	}
	return model.ToDomain(), nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	model := models.CategoryModelFromDomain(category)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError("ALREADY_EXISTS", "Category with this name or slug already exists")
		}
		return shared.NewPersistenceError("save category", err)
	}
	category.ID = model.ID
	return nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)

// GormBrandRepository implements BrandRepository using GORM
type GormBrandRepository struct {
	db *gorm.DB
}

// NewGormBrandRepository creates a new GormBrandRepository
func NewGormBrandRepository(db *gorm.DB) *GormBrandRepository {
	return &GormBrandRepository{db: db}
}

// FindAll returns every brand ordered by name
func (r *GormBrandRepository) FindAll(ctx context.Context) ([]catalog.Brand, error) {
	var rows []models.BrandModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("list brands", err)
	}
	brands := make([]catalog.Brand, len(rows))
	for i := range rows {
		brands[i] = *rows[i].ToDomain()
	}
	return brands, nil
}

// FindByName finds a brand by its exact name
func (r *GormBrandRepository) FindByName(ctx context.Context, name string) (*catalog.Brand, error) {
	var model models.BrandModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		return nil, wrapNotFound(err, "find brand")
	}
	return model.ToDomain(), nil
}

// Save creates or updates a brand
func (r *GormBrandRepository) Save(ctx context.Context, brand *catalog.Brand) error {
	model := models.BrandModelFromDomain(brand)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError("ALREADY_EXISTS", "Brand with this name already exists")
		}
		return shared.NewPersistenceError("save brand", err)
	}
	brand.ID = model.ID
	return nil
}

// Ensure GormBrandRepository implements BrandRepository
var _ catalog.BrandRepository = (*GormBrandRepository)(nil)

package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.withRelations(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "find product")
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a product by its slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string, activeOnly bool) (*catalog.Product, error) {
	query := r.withRelations(ctx).Where("slug = ?", slug)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var model models.ProductModel
	if err := query.First(&model).Error; err != nil {
		return nil, wrapNotFound(err, "find product by slug")
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of products matching the filter and the total match count
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, shared.NewPersistenceError("count products", err)
	}

	query = query.Preload("Brand").Preload("Category").Order(ProductOrderClause(filter.Ordering))
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, shared.NewPersistenceError("list products", err)
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, total, nil
}

// Save creates a new product or updates an existing one. The slug of an
// existing product is left untouched.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)

	if !product.IsPersisted() {
		if err := r.db.WithContext(ctx).Omit("Brand", "Category").Create(model).Error; err != nil {
			if isDuplicateKey(err) {
				return shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
			}
			return shared.NewPersistenceError("create product", err)
		}
		product.ID = model.ID
		product.CreatedAt = model.CreatedAt
		product.UpdatedAt = model.UpdatedAt
		return nil
	}

	model.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Select("name", "brand_id", "category_id", "price", "stock", "main_image", "image_key",
			"short_description", "long_description", "is_active", "updated_at").
		Updates(model)
	if result.Error != nil {
		return shared.NewPersistenceError("update product", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	product.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes a product. The order_items foreign key refuses the delete
// while any order references the product.
func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return catalog.ErrProductInUse
		}
		return shared.NewPersistenceError("delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsBySlug checks if a product with the given slug exists
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, shared.NewPersistenceError("check product slug", err)
	}
	return count > 0, nil
}

func (r *GormProductRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Brand").Preload("Category")
}

// applyFilter applies the narrowing predicates of a listing
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.BrandID != nil {
		query = query.Where("brand_id = ?", *filter.BrandID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(short_description) LIKE ? ESCAPE '\' OR LOWER(long_description) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	return query
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

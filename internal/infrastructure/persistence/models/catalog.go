package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CategoryModel is the persistence model for the Category entity.
type CategoryModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug string `gorm:"type:varchar(120);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{ID: m.ID, Name: m.Name, Slug: m.Slug}
}

// CategoryModelFromDomain creates a new persistence model from a domain Category.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	return &CategoryModel{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

// BrandModel is the persistence model for the Brand entity.
type BrandModel struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	Name    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Website string `gorm:"type:varchar(200);not null;default:''"`
}

// TableName returns the table name for GORM
func (BrandModel) TableName() string {
	return "brands"
}

// ToDomain converts the persistence model to a domain Brand.
func (m *BrandModel) ToDomain() *catalog.Brand {
	return &catalog.Brand{ID: m.ID, Name: m.Name, Website: m.Website}
}

// BrandModelFromDomain creates a new persistence model from a domain Brand.
func BrandModelFromDomain(b *catalog.Brand) *BrandModel {
	return &BrandModel{ID: b.ID, Name: b.Name, Website: b.Website}
}

// ProductModel is the persistence model for the Product aggregate.
type ProductModel struct {
	BaseModel
	Name             string          `gorm:"type:varchar(200);not null"`
	Slug             string          `gorm:"type:varchar(220);not null;uniqueIndex"`
	BrandID          int64           `gorm:"not null;index"`
	CategoryID       int64           `gorm:"not null;index"`
	Price            decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	Stock            int             `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock >= 0"`
	MainImage        string          `gorm:"type:varchar(500);not null;default:''"`
	ImageKey         string          `gorm:"type:varchar(500);not null;default:''"`
	ShortDescription string          `gorm:"type:varchar(255);not null;default:''"`
	LongDescription  string          `gorm:"type:text;not null;default:''"`
	// No gorm default: Create skips zero-valued fields that carry one, which
	// would store an inactive product as active.
	IsActive         bool            `gorm:"not null;index"`

	Brand    *BrandModel    `gorm:"foreignKey:BrandID;constraint:OnDelete:RESTRICT"`
	Category *CategoryModel `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.aggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		BrandID:           m.BrandID,
		CategoryID:        m.CategoryID,
		Price:             m.Price,
		Stock:             m.Stock,
		MainImage:         m.MainImage,
		ImageKey:          m.ImageKey,
		ShortDescription:  m.ShortDescription,
		LongDescription:   m.LongDescription,
		IsActive:          m.IsActive,
	}
	if m.Brand != nil {
		p.Brand = m.Brand.ToDomain()
	}
	if m.Category != nil {
		p.Category = m.Category.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Slug = p.Slug
	m.BrandID = p.BrandID
	m.CategoryID = p.CategoryID
	m.Price = p.Price
	m.Stock = p.Stock
	m.MainImage = p.MainImage
	m.ImageKey = p.ImageKey
	m.ShortDescription = p.ShortDescription
	m.LongDescription = p.LongDescription
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
)

// newTestDatabase opens a migrated SQLite database in a temp dir. The pool is
// limited to one connection, so concurrent transactions queue on it.
func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "store.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.AutoMigrate())
	return db
}

type catalogFixture struct {
	db       *Database
	brand    *catalog.Brand
	category *catalog.Category
}

func newCatalogFixture(t *testing.T, db *Database) *catalogFixture {
	t.Helper()
	ctx := context.Background()

	brand, err := catalog.NewBrand("Acme", "https://acme.example")
	require.NoError(t, err)
	require.NoError(t, NewGormBrandRepository(db.DB).Save(ctx, brand))

	category, err := catalog.NewCategory("Gadgets", "")
	require.NoError(t, err)
	require.NoError(t, NewGormCategoryRepository(db.DB).Save(ctx, category))

	return &catalogFixture{db: db, brand: brand, category: category}
}

func (f *catalogFixture) product(t *testing.T, name, price string, stock int) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct(name, "", f.brand.ID, f.category.ID, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(f.db.DB).Save(context.Background(), p))
	return p
}

func (f *catalogFixture) stockOf(t *testing.T, productID int64) int {
	t.Helper()

	p, err := NewGormProductRepository(f.db.DB).FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
)

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string]string
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: make(map[string]string)}
}

func (u *memoryUploader) ObjectExists(_ context.Context, key string) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.objects[key]
	return ok, nil
}

func (u *memoryUploader) Upload(_ context.Context, key string, _ []byte, contentType string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = contentType
	return nil
}

func newSeedDatabase(t *testing.T) *persistence.Database {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "seed.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate())
	return db
}

func newTestSeeder(db *persistence.Database, images ImageUploader) *Seeder {
	return NewSeeder(
		persistence.NewGormCategoryRepository(db.DB),
		persistence.NewGormBrandRepository(db.DB),
		persistence.NewGormProductRepository(db.DB),
		images,
		"testdata",
		zap.NewNop(),
	)
}

func TestLoadFixture(t *testing.T) {
	t.Run("json fixture", func(t *testing.T) {
		f, err := LoadFixture("testdata/catalog.json")
		require.NoError(t, err)
		assert.Len(t, f.Categories, 2)
		assert.Len(t, f.Brands, 1)
		require.Len(t, f.Products, 3)
		assert.Equal(t, "kyusu.png", f.Products[1].ImageFile)
		assert.True(t, f.Products[2].Inactive)
	})

	t.Run("bundled toml fixture", func(t *testing.T) {
		f, err := LoadFixture("../../fixtures/catalog.toml")
		require.NoError(t, err)
		assert.NotEmpty(t, f.Products)
	})

	t.Run("rejects a bad price", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(
			`{"products":[{"name":"X","category":"a","brand":"b","price":"abc","stock":1}]}`), 0o600))

		_, err := LoadFixture(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid price")
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(
			`{"products":[{"name":"X","category":"a","brand":"b","price":"1","stock":-1}]}`), 0o600))

		_, err := LoadFixture(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stock cannot be negative")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFixture(filepath.Join(t.TempDir(), "none.json"))
		require.Error(t, err)
	})
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	fixture, err := LoadFixture("testdata/catalog.json")
	require.NoError(t, err)

	t.Run("creates rows and derives slugs", func(t *testing.T) {
		db := newSeedDatabase(t)
		images := newMemoryUploader()

		report, err := newTestSeeder(db, images).Run(ctx, fixture)
		require.NoError(t, err)
		assert.Equal(t, Report{
			CategoriesCreated: 2,
			BrandsCreated:     1,
			ProductsCreated:   3,
			ImagesUploaded:    1,
		}, report)

		products := persistence.NewGormProductRepository(db.DB)
		sencha, err := products.FindBySlug(ctx, "sencha-uber-grun", true)
		require.NoError(t, err)
		assert.Equal(t, "8.4", sencha.Price.String())
		assert.Equal(t, 10, sencha.Stock)

		kyusu, err := products.FindBySlug(ctx, "kyusu", true)
		require.NoError(t, err)
		assert.Equal(t, "products/kyusu.png", kyusu.ImageKey)
		assert.Equal(t, "image/png", images.objects["products/kyusu.png"])

		_, err = products.FindBySlug(ctx, "old-tin", true)
		require.Error(t, err)
		oldTin, err := products.FindBySlug(ctx, "old-tin", false)
		require.NoError(t, err)
		assert.False(t, oldTin.IsActive)
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		db := newSeedDatabase(t)
		images := newMemoryUploader()
		seeder := newTestSeeder(db, images)

		_, err := seeder.Run(ctx, fixture)
		require.NoError(t, err)

		report, err := seeder.Run(ctx, fixture)
		require.NoError(t, err)
		assert.Equal(t, Report{ProductsSkipped: 3}, report)

		cats, err := persistence.NewGormCategoryRepository(db.DB).FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, cats, 2)
	})

	t.Run("images skipped without a store", func(t *testing.T) {
		db := newSeedDatabase(t)

		report, err := newTestSeeder(db, nil).Run(ctx, fixture)
		require.NoError(t, err)
		assert.Zero(t, report.ImagesUploaded)

		kyusu, err := persistence.NewGormProductRepository(db.DB).FindBySlug(ctx, "kyusu", true)
		require.NoError(t, err)
		assert.Empty(t, kyusu.ImageKey)
	})

	t.Run("unknown category fails", func(t *testing.T) {
		db := newSeedDatabase(t)
		bad := &Fixture{
			Brands: []BrandFixture{{Name: "Leafline"}},
			Products: []ProductFixture{
				{Name: "Orphan", Category: "missing", Brand: "Leafline", Price: "1.00"},
			},
		}

		_, err := newTestSeeder(db, nil).Run(ctx, bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown category "missing"`)
	})

	t.Run("slug helper matches the catalog", func(t *testing.T) {
		assert.Equal(t, "sencha-uber-grun", catalog.Slugify("Sencha Über Grün"))
	})
}

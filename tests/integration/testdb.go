// Package integration runs the storefront against a real PostgreSQL started
// with testcontainers. The schema comes from the embedded SQL migrations.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/migrations"
)

const (
	testDBName     = "storefront_test"
	testDBUser     = "postgres"
	testDBPassword = "storefront"
)

var (
	// Shared container for all tests in the package
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
	sharedConfig      config.DatabaseConfig
)

// TestDB is a migrated database connection for one test
type TestDB struct {
	*persistence.Database
	Config config.DatabaseConfig
	DSN    string
	t      *testing.T
}

// NewTestDB returns a connection to the shared PostgreSQL container with
// every table emptied. The container starts, and migrates, on first use.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := sharedDatabase(t)

	db, err := persistence.NewDatabase(&cfg)
	require.NoError(t, err, "Failed to connect to database")

	tdb := &TestDB{Database: db, Config: cfg, DSN: cfg.DSN(), t: t}
	t.Cleanup(func() {
		_ = tdb.Close()
	})
	tdb.CleanTables()
	return tdb
}

func sharedDatabase(t *testing.T) config.DatabaseConfig {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		return sharedConfig
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         portNum,
		User:         testDBUser,
		Password:     testDBPassword,
		DBName:       testDBName,
		SSLMode:      "disable",
		MaxOpenConns: 20,
		MaxIdleConns: 5,
	}
	runMigrations(t, cfg.DSN())

	sharedContainer = container
	sharedConfig = cfg
	return cfg
}

// runMigrations applies the embedded migrations over a dedicated connection
// that the migrator closes
func runMigrations(t *testing.T, dsn string) {
	t.Helper()

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	m, err := migration.NewFromFS(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	defer m.Close()

	require.NoError(t, m.Up(), "Failed to run migrations")
}

// CleanupSharedContainer terminates the shared container. Call it from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
	}
}

// CleanTables truncates all application tables and resets their sequences
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	err := tdb.DB.Exec(`TRUNCATE TABLE order_items, orders, products, brands, categories, users RESTART IDENTITY CASCADE`).Error
	require.NoError(tdb.t, err, "Failed to truncate tables")
}

// CatalogSeed holds rows created by SeedCatalog
type CatalogSeed struct {
	Brand    *catalog.Brand
	Category *catalog.Category
}

// SeedCatalog creates one brand and one category
func (tdb *TestDB) SeedCatalog(ctx context.Context) CatalogSeed {
	tdb.t.Helper()

	brand, err := catalog.NewBrand("Acme", "https://acme.example")
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormBrandRepository(tdb.DB).Save(ctx, brand))

	category, err := catalog.NewCategory("Gadgets", "")
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormCategoryRepository(tdb.DB).Save(ctx, category))

	return CatalogSeed{Brand: brand, Category: category}
}

// CreateProduct stores an active product with the given price and stock
func (tdb *TestDB) CreateProduct(ctx context.Context, seed CatalogSeed, name, price string, stock int) *catalog.Product {
	tdb.t.Helper()

	p, err := catalog.NewProduct(name, "", seed.Brand.ID, seed.Category.ID, decimal.RequireFromString(price), stock)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormProductRepository(tdb.DB).Save(ctx, p))
	return p
}

// StockOf reads the stock column directly
func (tdb *TestDB) StockOf(productID int64) int {
	tdb.t.Helper()

	var stock int
	require.NoError(tdb.t, tdb.DB.Raw(`SELECT stock FROM products WHERE id = ?`, productID).Scan(&stock).Error)
	return stock
}

// Count returns the number of rows in table
func (tdb *TestDB) Count(table string) int64 {
	tdb.t.Helper()

	var n int64
	require.NoError(tdb.t, tdb.DB.Raw(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n).Error)
	return n
}

// WithTransaction runs fn inside a transaction that is always rolled back
func (tdb *TestDB) WithTransaction(fn func(tx *gorm.DB)) {
	tdb.t.Helper()

	tx := tdb.DB.Begin()
	require.NoError(tdb.t, tx.Error, "Failed to begin transaction")
	defer tx.Rollback()

	fn(tx)
}

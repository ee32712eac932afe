package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase wraps a sqlmock-backed GORM handle in a Database
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	m := testutil.NewMockDB(t)
	return &Database{DB: m.DB}, m.Mock, m.SqlDB
}

func TestNewDatabase_SQLite(t *testing.T) {
	t.Run("opens a file database and migrates every model", func(t *testing.T) {
		cfg := &config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   t.TempDir() + "/store.db",
		}

		db, err := NewDatabase(cfg)
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.AutoMigrate())
		for _, table := range []string{"users", "categories", "brands", "products", "orders", "order_items"} {
			assert.True(t, db.DB.Migrator().HasTable(table), table)
		}

		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.MaxOpenConnections)
	})

	t.Run("order items cascade with their order", func(t *testing.T) {
		db, err := NewDatabase(&config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   t.TempDir() + "/store.db",
		})
		require.NoError(t, err)
		defer db.Close()
		require.NoError(t, db.AutoMigrate())

		var ddl string
		require.NoError(t, db.DB.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'order_items'").Scan(&ddl).Error)
		assert.Contains(t, ddl, "fk_orders_items")
		assert.Contains(t, ddl, "ON DELETE CASCADE")
	})

	t.Run("rejects an unknown driver", func(t *testing.T) {
		_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}

func TestDatabase_Stats(t *testing.T) {
	t.Run("returns ConnectionStats from underlying DB", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		stats, err := db.Stats()

		assert.NoError(t, err)
		assert.IsType(t, ConnectionStats{}, stats)
		assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	})
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure is reported", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()

		gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
			DisableAutomaticPing: true,
		})
		require.NoError(t, err)
		db := &Database{DB: gormDB}

		mock.ExpectPing().WillReturnError(assert.AnError)

		assert.ErrorIs(t, db.Ping(), assert.AnError)
	})
}

func TestDatabase_Close(t *testing.T) {
	t.Run("successful close", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)

		mock.ExpectClose()

		assert.NoError(t, db.Close())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("successful transaction", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		type TestModel struct {
			ID   uint
			Name string
		}

		mock.ExpectBegin()
		// PostgreSQL GORM uses Query with RETURNING clause instead of Exec
		mock.ExpectQuery(`INSERT INTO "test_models"`).
			WithArgs("test").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&TestModel{Name: "test"}).Error
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("transaction rollback on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

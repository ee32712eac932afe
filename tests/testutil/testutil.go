// Package testutil holds the helpers shared by the storefront test suites:
// a sqlmock-backed GORM handle, an HTTP request driver for gin engines, and
// a recording event handler.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens GORM on the postgres dialect over a sqlmock connection.
// The connection is closed on test cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "Failed to open GORM connection")

	m := &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// Close closes the mock database connection.
func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

package persistence

import (
	"context"
	"database/sql"

	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormOrderTransactionScope implements TransactionScope using GORM transactions.
// Placement runs at READ COMMITTED: the stock ledger's conditional decrement
// re-reads the locked row, so no decision depends on a stale snapshot.
type GormOrderTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderTransactionScope creates a new GormOrderTransactionScope.
func NewGormOrderTransactionScope(db *gorm.DB) *GormOrderTransactionScope {
	return &GormOrderTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormOrderTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}, s.txOptions())
}

func (s *GormOrderTransactionScope) txOptions() *sql.TxOptions {
	if s.db.Dialector.Name() == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	// SQLite only offers serializable transactions.
	return nil
}

// gormTransactionalRepositories provides access to the placement repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// StockLedger returns the stock ledger scoped to the current transaction.
func (r *gormTransactionalRepositories) StockLedger() trade.StockLedger {
	return NewGormStockLedger(r.tx)
}

// Ensure GormOrderTransactionScope implements TransactionScope
var _ apptrade.TransactionScope = (*GormOrderTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

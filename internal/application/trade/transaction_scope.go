package trade

import (
	"context"

	"github.com/storefront/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories that
// take part in order placement. Everything done through the repositories
// handed to fn commits or rolls back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the placement repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() trade.OrderRepository
	// StockLedger returns the stock ledger scoped to the current transaction
	StockLedger() trade.StockLedger
}

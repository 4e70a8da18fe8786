package repositories

import "context"

// TxFn runs with a context that carries the open transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a unit of work atomically
type TransactionManager interface {
	// ExecTx commits when fn returns nil and rolls back otherwise.
	// A context that already carries a transaction joins it.
	ExecTx(ctx context.Context, fn TxFn) error
}

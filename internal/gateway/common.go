package gateway

import "context"

// TransactionObject carries the store-specific transaction handle.
type TransactionObject interface{}

// TransactionManager runs fn inside one atomic unit of work. A non-nil error rolls back.
type TransactionManager interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionKeyType avoids collisions with other context keys.
type TransactionKeyType string

const TransactionKey TransactionKeyType = "transaction"

// TxFrom returns the transaction injected by TransactionManager.Run, if any.
func TxFrom(ctx context.Context) TransactionObject {
	return ctx.Value(TransactionKey)
}

package repositories

import (
	"context"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// WithTransaction runs fn inside one atomic transaction carried by the context passed to fn.
	// If ctx already carries a transaction, fn joins it and the outer caller decides commit or rollback.
	// fn returning an error rolls the transaction back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

package ports

import (
	"context"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
)

// OrderReader is the read side used by the tracking query.
type OrderReader interface {
	// Get retrieves an order aggregate by its unique identifier.
	// Returns errs.ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

type OrderRepository interface {
	OrderReader

	// Add persists a new order aggregate. The stored version becomes 1.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order, guarded by its version:
	// the write only succeeds if storage still holds aggregate.Version().
	// Returns errs.ConflictError when another writer got there first and
	// errs.ObjectNotFoundError when the order is gone. On success the
	// aggregate's version is advanced.
	Update(ctx context.Context, aggregate *order.Order) error

	// ListTimestamps returns the stage entry times of every order of a category,
	// the raw material of the statistics recompute.
	ListTimestamps(ctx context.Context, categoryID string) ([]order.Timestamps, error)
}

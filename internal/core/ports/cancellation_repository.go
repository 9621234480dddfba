package ports

import (
	"context"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
)

// CancellationRepository is the append-only audit log of cancellations.
type CancellationRepository interface {
	// Add appends the record. A second record for the same order is rejected
	// with errs.ConflictError.
	Add(ctx context.Context, record order.CancellationRecord) error

	// Get returns the record of an order or errs.ObjectNotFoundError.
	Get(ctx context.Context, orderID kernel.UUID) (order.CancellationRecord, error)
}

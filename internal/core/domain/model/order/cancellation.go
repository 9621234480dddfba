package order

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
)

// CancellationRecord is the audit entry of a cancelled order. At most one exists per order.
type CancellationRecord struct {
	orderID     kernel.UUID
	reason      string
	initiatedBy kernel.Actor
	timestamp   time.Time
}

func NewCancellationRecord(orderID kernel.UUID, reason string, initiatedBy kernel.Actor, at time.Time) (CancellationRecord, error) {
	if err := errors.Join(orderID.Validate(), initiatedBy.Validate()); err != nil {
		return CancellationRecord{}, err
	}
	if at.IsZero() {
		return CancellationRecord{}, errs.NewValueIsRequiredError("timestamp")
	}
	return CancellationRecord{
		orderID:     orderID,
		reason:      reason,
		initiatedBy: initiatedBy,
		timestamp:   at.UTC(),
	}, nil
}

func (r CancellationRecord) OrderID() kernel.UUID {
	return r.orderID
}

func (r CancellationRecord) Reason() string {
	return r.reason
}

func (r CancellationRecord) InitiatedBy() kernel.Actor {
	return r.initiatedBy
}

func (r CancellationRecord) Timestamp() time.Time {
	return r.timestamp
}

// IsZero reports whether r is the zero value, i.e. no cancellation happened.
func (r CancellationRecord) IsZero() bool {
	return r.timestamp.IsZero()
}

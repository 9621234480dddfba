package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// MaxCancelReasonLength bounds the free-text reason a customer may give.
const MaxCancelReasonLength = 500

// Order is a customer order being tracked through its category's lifecycle.
//
// Order follows these invariants:
//   - status is a stage of its category or stage.Cancelled
//   - stage timestamps are set once and never decrease with stage rank
//   - cancelledAt and cancelReason are present only when status is CANCELLED
//   - workerID, once bound, never changes
type Order struct {
	id           kernel.UUID
	categoryID   string
	customerID   kernel.UUID
	workerID     *kernel.UUID
	status       stage.Key
	timestamps   Timestamps
	cancelledAt  *time.Time
	cancelReason string
	createdAt    time.Time

	// version is the optimistic concurrency counter; zero until first persisted.
	version int

	isConstructed bool
}

// NewOrder creates an order in the first stage of seq, entered at createdAt.
//
// Example:
//
//	seq, _ := registry.Sequence("home-services")
//	o, err := order.NewOrder(kernel.NewUUID(), seq, customerID, time.Now())
//	if err != nil {
//	    return err
//	}
func NewOrder(id kernel.UUID, seq *stage.Sequence, customerID kernel.UUID, createdAt time.Time) (*Order, error) {
	if seq == nil {
		return nil, errs.NewValueIsRequiredError("category")
	}
	if err := errors.Join(
		id.Validate(),
		customerID.Validate(),
		validateTime("createdAt", createdAt),
	); err != nil {
		return nil, err
	}

	initial := seq.Initial().Key()
	return &Order{
		id:            id,
		categoryID:    seq.CategoryID(),
		customerID:    customerID,
		status:        initial,
		timestamps:    Timestamps{initial: createdAt.UTC()},
		createdAt:     createdAt.UTC(),
		isConstructed: true,
	}, nil
}

// State is the persisted form of an order, used to rebuild it from storage.
type State struct {
	ID           kernel.UUID
	CategoryID   string
	CustomerID   kernel.UUID
	WorkerID     *kernel.UUID
	Status       stage.Key
	Timestamps   Timestamps
	CancelledAt  *time.Time
	CancelReason string
	CreatedAt    time.Time
	Version      int
}

// RestoreOrder rebuilds an order from storage, re-checking every invariant against seq.
func RestoreOrder(seq *stage.Sequence, s State) (*Order, error) {
	if seq == nil {
		return nil, errs.NewValueIsRequiredError("category")
	}
	if s.CategoryID != seq.CategoryID() {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"categoryID",
			fmt.Errorf("order category %s restored with sequence %s", s.CategoryID, seq.CategoryID()),
		)
	}
	if err := errors.Join(s.ID.Validate(), s.CustomerID.Validate()); err != nil {
		return nil, err
	}
	if s.WorkerID != nil {
		if err := s.WorkerID.Validate(); err != nil {
			return nil, err
		}
	}
	if s.Version < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("version", fmt.Errorf("%d is negative", s.Version))
	}

	timestamps := s.Timestamps.Clone()
	if err := timestamps.ValidateAgainst(seq); err != nil {
		return nil, err
	}

	cancelled := s.Status == stage.Cancelled
	if !cancelled {
		if _, ok := seq.Lookup(s.Status); !ok {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"status",
				fmt.Errorf("stage %s is not part of category %s", s.Status, seq.CategoryID()),
			)
		}
		if !timestamps.Has(s.Status) {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"stageTimestamps",
				fmt.Errorf("current stage %s has no entry time", s.Status),
			)
		}
	}
	if cancelled != (s.CancelledAt != nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"cancelledAt",
			fmt.Errorf("cancelledAt must be set exactly when status is %s", stage.Cancelled),
		)
	}

	o := &Order{
		id:            s.ID,
		categoryID:    s.CategoryID,
		customerID:    s.CustomerID,
		workerID:      s.WorkerID,
		status:        s.Status,
		timestamps:    timestamps,
		cancelReason:  s.CancelReason,
		createdAt:     s.CreatedAt.UTC(),
		version:       s.Version,
		isConstructed: true,
	}
	if s.CancelledAt != nil {
		at := s.CancelledAt.UTC()
		o.cancelledAt = &at
	}
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CategoryID() string {
	return o.categoryID
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// WorkerID returns the assigned worker, or nil before the worker-assigning stage.
func (o *Order) WorkerID() *kernel.UUID {
	if o.workerID == nil {
		return nil
	}
	id := *o.workerID
	return &id
}

func (o *Order) Status() stage.Key {
	return o.status
}

// StageTimestamps returns a copy of the stage entry times.
func (o *Order) StageTimestamps() Timestamps {
	return o.timestamps.Clone()
}

// EnteredAt returns the time the order first entered key.
func (o *Order) EnteredAt(key stage.Key) (time.Time, bool) {
	return o.timestamps.Get(key)
}

func (o *Order) CancelledAt() *time.Time {
	if o.cancelledAt == nil {
		return nil
	}
	at := *o.cancelledAt
	return &at
}

func (o *Order) CancelReason() string {
	return o.cancelReason
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) Version() int {
	return o.version
}

// IsCancelled reports whether the order ended by cancellation.
func (o *Order) IsCancelled() bool {
	return o.status == stage.Cancelled
}

// IsTerminal reports whether the order is COMPLETED (or its category's terminal stage) or CANCELLED.
func (o *Order) IsTerminal(seq *stage.Sequence) bool {
	return seq.IsTerminal(o.status)
}

// MarkPersisted records the version storage now holds for this order. Repositories call
// it after a successful write.
func (o *Order) MarkPersisted(version int) {
	o.version = version
}

// Advance moves the order to target, the immediate successor of its current stage.
//
// Returns errs.InvalidTransitionError when the order is terminal, target is unknown
// or not the successor, or at precedes the current stage's entry time. The target's
// timestamp is only written if it was never set.
func (o *Order) Advance(seq *stage.Sequence, target stage.Key, at time.Time) error {
	if err := o.checkMutable(seq, target, at); err != nil {
		return err
	}

	def, ok := seq.Lookup(target)
	if !ok {
		return errs.NewInvalidTransitionError(o.status.String(), target.String(),
			fmt.Sprintf("stage is not part of category %s", seq.CategoryID()))
	}
	next, ok := seq.Successor(o.status)
	if !ok || next.Key() != def.Key() {
		return errs.NewInvalidTransitionError(o.status.String(), target.String(), "not the next stage")
	}

	o.status = target
	if !o.timestamps.Has(target) {
		o.timestamps[target] = at.UTC()
	}
	return nil
}

// AssignWorker binds the worker. Re-binding the same worker is a no-op; binding a
// different one fails.
func (o *Order) AssignWorker(workerID kernel.UUID) error {
	if err := workerID.Validate(); err != nil {
		return err
	}
	if o.workerID != nil {
		if o.workerID.IsEqual(workerID) {
			return nil
		}
		return errs.NewValueIsInvalidErrorWithCause(
			"workerID",
			fmt.Errorf("order %s is already assigned to worker %s", o.id, o.workerID),
		)
	}
	o.workerID = &workerID
	return nil
}

// Cancel moves the order to CANCELLED and returns the audit record to append. Stage
// timestamps are left untouched. Whether cancellation is still permitted at the current
// stage is decided by the caller's policy.
func (o *Order) Cancel(seq *stage.Sequence, by kernel.Actor, reason string, at time.Time) (CancellationRecord, error) {
	if err := by.Validate(); err != nil {
		return CancellationRecord{}, err
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > MaxCancelReasonLength {
		return CancellationRecord{}, errs.NewValueIsOutOfRangeError("cancelReason length", len(reason), 0, MaxCancelReasonLength)
	}
	if err := o.checkMutable(seq, stage.Cancelled, at); err != nil {
		return CancellationRecord{}, err
	}

	record, err := NewCancellationRecord(o.id, reason, by, at)
	if err != nil {
		return CancellationRecord{}, err
	}

	cancelledAt := at.UTC()
	o.status = stage.Cancelled
	o.cancelledAt = &cancelledAt
	o.cancelReason = reason
	return record, nil
}

func (o *Order) checkMutable(seq *stage.Sequence, target stage.Key, at time.Time) error {
	if err := validateTime("timestamp", at); err != nil {
		return err
	}
	if seq.CategoryID() != o.categoryID {
		return errs.NewValueIsInvalidErrorWithCause(
			"category",
			fmt.Errorf("order of category %s mutated with sequence %s", o.categoryID, seq.CategoryID()),
		)
	}
	if o.IsTerminal(seq) {
		return errs.NewInvalidTransitionError(o.status.String(), target.String(), "order is terminal")
	}
	if entered, ok := o.timestamps.Get(o.status); ok && at.Before(entered) {
		return errs.NewInvalidTransitionError(o.status.String(), target.String(),
			fmt.Sprintf("timestamp %s precedes entry of current stage at %s",
				at.UTC().Format(time.RFC3339Nano), entered.Format(time.RFC3339Nano)))
	}
	return nil
}

func validateTime(name string, t time.Time) error {
	if t.IsZero() {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

package services

import (
	"fmt"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/pkg/errs"
)

// CancellationPolicy decides whether a customer may still cancel an order. It never
// mutates the order.
//
// Business rules:
//   - Only the order's own customer may cancel
//   - Terminal orders cannot be cancelled
//   - Cancellation is allowed up to and including the category's cancellable boundary stage
type CancellationPolicy struct{}

func NewCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{}
}

// CanCancel reports whether the order is non-terminal and at or before the boundary.
func (p CancellationPolicy) CanCancel(o *order.Order, seq *stage.Sequence) bool {
	return p.checkStage(o, seq) == nil
}

// ValidateCancellation returns errs.ForbiddenError when actor is not the order's
// customer and errs.InvalidTransitionError when the order is terminal or past its
// cancellable boundary.
func (p CancellationPolicy) ValidateCancellation(o *order.Order, seq *stage.Sequence, actor kernel.Actor) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if !actor.Is(kernel.RoleCustomer, o.CustomerID()) {
		return errs.NewForbiddenError(actor.String(), "cancel order "+o.ID().String())
	}
	return p.checkStage(o, seq)
}

func (p CancellationPolicy) checkStage(o *order.Order, seq *stage.Sequence) error {
	if o.IsTerminal(seq) {
		return errs.NewInvalidTransitionError(o.Status().String(), stage.Cancelled.String(), "order is terminal")
	}
	current, ok := seq.Position(o.Status())
	if !ok {
		return errs.NewInvalidTransitionError(o.Status().String(), stage.Cancelled.String(),
			fmt.Sprintf("stage is not part of category %s", seq.CategoryID()))
	}
	boundary := seq.CancellableBoundary()
	limit, _ := seq.Position(boundary.Key())
	if current > limit {
		return errs.NewInvalidTransitionError(o.Status().String(), stage.Cancelled.String(),
			fmt.Sprintf("cancellation closes after %s", boundary.Key()))
	}
	return nil
}

package services

import (
	"fmt"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/pkg/errs"
)

// Transition is a requested stage change of one order.
type Transition struct {
	Target stage.Key
	Actor  kernel.Actor
	At     time.Time
	// Reason is only used when Target is stage.Cancelled.
	Reason string
}

// ExitedStage is the stage an order left, with the time it spent there.
type ExitedStage struct {
	Key   stage.Key
	Dwell time.Duration
}

// TransitionOutcome describes what Apply changed. A zero outcome with a nil error is
// an idempotent re-application.
type TransitionOutcome struct {
	Changed bool
	// Exited is set for forward transitions; it feeds the dwell statistics.
	Exited *ExitedStage
	// Cancellation is set when the order was cancelled.
	Cancellation *order.CancellationRecord
}

// TransitionEngine validates and applies single transitions. It is the only code that
// mutates order lifecycle state.
//
// Checks run in this order, the first failure wins:
//   - terminal orders reject everything (errs.InvalidTransitionError)
//   - the target must be CANCELLED or a stage of the category (errs.InvalidTransitionError)
//   - the actor must be allowed to drive the target (errs.ForbiddenError)
//   - a target equal to the current stage is a no-op success
//   - the target must be the immediate successor and the timestamp must not precede
//     the current stage's entry (errs.InvalidTransitionError)
//   - cancellation must pass the CancellationPolicy
//
// Example:
//
//	engine := services.NewTransitionEngine(services.NewCancellationPolicy())
//	outcome, err := engine.Apply(o, seq, services.Transition{
//	    Target: stage.Accepted,
//	    Actor:  worker,
//	    At:     time.Now(),
//	})
type TransitionEngine struct {
	policy CancellationPolicy
}

func NewTransitionEngine(policy CancellationPolicy) TransitionEngine {
	return TransitionEngine{policy: policy}
}

// Apply mutates o in memory. Persisting it, the dwell sample and the cancellation
// record is the caller's job and must happen in one unit of work.
func (e TransitionEngine) Apply(o *order.Order, seq *stage.Sequence, tr Transition) (TransitionOutcome, error) {
	if err := o.Validate(); err != nil {
		return TransitionOutcome{}, err
	}
	if err := tr.Actor.Validate(); err != nil {
		return TransitionOutcome{}, err
	}
	if tr.At.IsZero() {
		return TransitionOutcome{}, errs.NewValueIsRequiredError("timestamp")
	}

	if o.IsTerminal(seq) {
		return TransitionOutcome{}, errs.NewInvalidTransitionError(o.Status().String(), tr.Target.String(), "order is terminal")
	}

	if tr.Target == stage.Cancelled {
		return e.cancel(o, seq, tr)
	}

	def, ok := seq.Lookup(tr.Target)
	if !ok {
		return TransitionOutcome{}, errs.NewInvalidTransitionError(o.Status().String(), tr.Target.String(),
			fmt.Sprintf("stage is not part of category %s", seq.CategoryID()))
	}
	if err := e.authorize(o, def, tr.Actor); err != nil {
		return TransitionOutcome{}, err
	}
	if tr.Target == o.Status() {
		return TransitionOutcome{}, nil
	}

	previous := o.Status()
	entered, hasEntry := o.EnteredAt(previous)
	if err := o.Advance(seq, tr.Target, tr.At); err != nil {
		return TransitionOutcome{}, err
	}
	if def.AssignsWorker() {
		if err := o.AssignWorker(tr.Actor.ID()); err != nil {
			return TransitionOutcome{}, err
		}
	}

	outcome := TransitionOutcome{Changed: true}
	if hasEntry {
		outcome.Exited = &ExitedStage{Key: previous, Dwell: tr.At.Sub(entered)}
	}
	return outcome, nil
}

func (e TransitionEngine) cancel(o *order.Order, seq *stage.Sequence, tr Transition) (TransitionOutcome, error) {
	if err := e.policy.ValidateCancellation(o, seq, tr.Actor); err != nil {
		return TransitionOutcome{}, err
	}
	record, err := o.Cancel(seq, tr.Actor, tr.Reason, tr.At)
	if err != nil {
		return TransitionOutcome{}, err
	}
	return TransitionOutcome{Changed: true, Cancellation: &record}, nil
}

func (e TransitionEngine) authorize(o *order.Order, def stage.Definition, actor kernel.Actor) error {
	action := fmt.Sprintf("move order %s to %s", o.ID(), def.Key())

	switch def.DrivenBy() {
	case kernel.RoleSystem:
		if actor.Role() != kernel.RoleSystem {
			return errs.NewForbiddenError(actor.String(), action)
		}
		return nil
	case kernel.RoleWorker:
		if actor.Role() != kernel.RoleWorker {
			return errs.NewForbiddenError(actor.String(), action)
		}
		worker := o.WorkerID()
		if worker == nil {
			if def.AssignsWorker() {
				return nil
			}
			return errs.NewForbiddenError(actor.String(), action+": no worker assigned")
		}
		if !worker.IsEqual(actor.ID()) {
			return errs.NewForbiddenError(actor.String(), action+": not the assigned worker")
		}
		return nil
	default:
		return errs.NewForbiddenError(actor.String(), action)
	}
}

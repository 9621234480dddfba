package commands

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

var (
	ErrApplyTransitionCommandIsNotConstructed = errors.New(
		"ApplyTransitionCommand must be created via NewApplyTransitionCommand constructor",
	)
)

// NextStage as a target means "the stage after From()", resolved against the order
// state read inside the transaction.
const NextStage stage.Key = ""

// ApplyTransitionCommand moves an order forward on behalf of a worker or the system.
// Cancellation has its own command.
//
// Example:
//
//	cmd, err := NewApplyTransitionCommand(orderID, stage.InProgress, worker, time.Now())
//	if err != nil {
//	    return err
//	}
//	o, err := handler.Handle(ctx, cmd)
type ApplyTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  stage.Key
	from    stage.Key
	actor   kernel.Actor
	at      time.Time

	guard guard.ConstructorGuard
}

func NewApplyTransitionCommand(
	orderID kernel.UUID,
	target stage.Key,
	actor kernel.Actor,
	at time.Time,
) (ApplyTransitionCommand, error) {
	cmd := ApplyTransitionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		cmd.setActor(actor),
		cmd.setAt(at),
	); err != nil {
		return ApplyTransitionCommand{}, err
	}

	return cmd, nil
}

// NewAdvanceOrderCommand targets the successor of from, the stage the caller saw as
// current. A retry after the first attempt committed finds the successor already
// current and is a no-op; any other current stage is an errs.InvalidTransitionError.
func NewAdvanceOrderCommand(
	orderID kernel.UUID,
	from stage.Key,
	actor kernel.Actor,
	at time.Time,
) (ApplyTransitionCommand, error) {
	cmd := ApplyTransitionCommand{
		target: NextStage,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setFrom(from),
		cmd.setActor(actor),
		cmd.setAt(at),
	); err != nil {
		return ApplyTransitionCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyTransitionCommand) Validate() error {
	return c.guard.Validate(ErrApplyTransitionCommandIsNotConstructed)
}

func (c ApplyTransitionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested stage, or NextStage.
func (c ApplyTransitionCommand) Target() stage.Key {
	return c.target
}

// From returns the expected current stage of an advance, empty otherwise.
func (c ApplyTransitionCommand) From() stage.Key {
	return c.from
}

func (c ApplyTransitionCommand) Actor() kernel.Actor {
	return c.actor
}

func (c ApplyTransitionCommand) At() time.Time {
	return c.at
}

func (c *ApplyTransitionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ApplyTransitionCommand) setTarget(target stage.Key) error {
	if target == NextStage {
		return errs.NewValueIsRequiredError("targetStage")
	}
	if target == stage.Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("targetStage", errors.New("use CancelOrderCommand to cancel"))
	}
	c.target = target
	return nil
}

func (c *ApplyTransitionCommand) setFrom(from stage.Key) error {
	if from == "" {
		return errs.NewValueIsRequiredError("fromStage")
	}
	if from == stage.Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("fromStage", errors.New("cancelled orders do not advance"))
	}
	c.from = from
	return nil
}

func (c *ApplyTransitionCommand) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *ApplyTransitionCommand) setAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("timestamp")
	}
	c.at = at
	return nil
}

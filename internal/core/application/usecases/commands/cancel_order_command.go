package commands

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

var (
	ErrCancelOrderCommandIsNotConstructed = errors.New(
		"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
	)
)

// CancelOrderCommand is a customer's request to cancel an order with an optional reason.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   kernel.Actor
	reason  string
	at      time.Time

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID kernel.UUID, actor kernel.Actor, reason string, at time.Time) (CancelOrderCommand, error) {
	cmd := CancelOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(actor),
		cmd.setReason(reason),
		cmd.setAt(at),
	); err != nil {
		return CancelOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CancelOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c CancelOrderCommand) Reason() string {
	return c.reason
}

func (c CancelOrderCommand) At() time.Time {
	return c.at
}

func (c *CancelOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CancelOrderCommand) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *CancelOrderCommand) setReason(reason string) error {
	if len(reason) > order.MaxCancelReasonLength {
		return errs.NewValueIsOutOfRangeError("cancelReason length", len(reason), 0, order.MaxCancelReasonLength)
	}
	c.reason = reason
	return nil
}

func (c *CancelOrderCommand) setAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("timestamp")
	}
	c.at = at
	return nil
}

package commands

import (
	"errors"
	"strings"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
)

// CreateOrderCommand registers a new order in the first stage of its category. It is
// issued by the upstream order-creation service.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "home-services", customerID, time.Now())
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	o, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	categoryID string
	customerID kernel.UUID
	createdAt  time.Time

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the identifiers, the category name and the creation time.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	categoryID string,
	customerID kernel.UUID,
	createdAt time.Time,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCategoryID(categoryID),
		cmd.setCustomerID(customerID),
		cmd.setCreatedAt(createdAt),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) CategoryID() string {
	return c.categoryID
}

func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

func (c CreateOrderCommand) CreatedAt() time.Time {
	return c.createdAt
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCategoryID(categoryID string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return errs.NewValueIsRequiredError("categoryId")
	}
	c.categoryID = categoryID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	c.createdAt = createdAt
	return nil
}

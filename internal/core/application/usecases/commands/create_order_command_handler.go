package commands

import (
	"context"

	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

// CreateOrderCommandHandler creates orders in the initial stage of their category.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, registry)
//	o, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // unknown category
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	catalog    ports.StageCatalog
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, catalog ports.StageCatalog) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		catalog:    catalog,
	}
}

// Handle resolves the category, builds the order and persists it. Unknown categories
// are reported as errs.ValueIsInvalidError so the caller sees a bad request.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	seq, err := h.catalog.Sequence(cmd.CategoryID())
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("categoryId", err)
	}

	o, err := order.NewOrder(cmd.OrderID(), seq, cmd.CustomerID(), cmd.CreatedAt())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

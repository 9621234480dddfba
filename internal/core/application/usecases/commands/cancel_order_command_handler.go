package commands

import (
	"context"

	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/services"
)

// CancelOrderCommandHandler cancels orders through the same transactional path as
// every other transition, so the cancellation policy is judged on the state the
// versioned write commits against.
type CancelOrderCommandHandler struct {
	transitions ApplyTransitionCommandHandler
}

func NewCancelOrderCommandHandler(transitions ApplyTransitionCommandHandler) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{transitions: transitions}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitions.apply(ctx, cmd.OrderID(), func(*order.Order, *stage.Sequence) (services.Transition, error) {
		return services.Transition{
			Target: stage.Cancelled,
			Actor:  cmd.Actor(),
			At:     cmd.At(),
			Reason: cmd.Reason(),
		}, nil
	})
}

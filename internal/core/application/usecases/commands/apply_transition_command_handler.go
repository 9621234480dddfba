package commands

import (
	"context"
	"log/slog"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/services"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

// ApplyTransitionCommandHandler runs one transition inside one unit of work: read the
// order, let the TransitionEngine judge and mutate it, then write the versioned order
// row, the dwell sample and any cancellation record together. A concurrent writer that
// committed first turns the versioned write into errs.ConflictError and nothing of this
// transition is kept.
//
// Example:
//
//	handler := NewApplyTransitionCommandHandler(uowFactory, registry, cache, metrics, logger)
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrConflict):
//	    // re-read and retry once
//	case errors.Is(err, errs.ErrInvalidTransition):
//	    // refresh state before retrying
//	}
type ApplyTransitionCommandHandler struct {
	uowFactory  TransitionUoWFactory
	catalog     ports.StageCatalog
	engine      services.TransitionEngine
	invalidator ports.StatsInvalidator
	metrics     ports.TrackingMetrics
	logger      *slog.Logger
}

func NewApplyTransitionCommandHandler(
	uowFactory TransitionUoWFactory,
	catalog ports.StageCatalog,
	invalidator ports.StatsInvalidator,
	metrics ports.TrackingMetrics,
	logger *slog.Logger,
) ApplyTransitionCommandHandler {
	return ApplyTransitionCommandHandler{
		uowFactory:  uowFactory,
		catalog:     catalog,
		engine:      services.NewTransitionEngine(services.NewCancellationPolicy()),
		invalidator: invalidator,
		metrics:     metrics,
		logger:      logger.With("component", "ApplyTransitionCommandHandler"),
	}
}

// Handle applies the command and returns the order as committed (or unchanged, for an
// idempotent re-application).
func (h ApplyTransitionCommandHandler) Handle(ctx context.Context, cmd ApplyTransitionCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.apply(ctx, cmd.OrderID(), func(o *order.Order, seq *stage.Sequence) (services.Transition, error) {
		target := cmd.Target()
		if target == NextStage {
			next, err := resolveAdvance(o, seq, cmd.From())
			if err != nil {
				return services.Transition{}, err
			}
			target = next
		}
		return services.Transition{Target: target, Actor: cmd.Actor(), At: cmd.At()}, nil
	})
}

// resolveAdvance turns "advance from" into a concrete target. When the order already
// sits in the successor of from, the target is the current stage and the engine treats
// the request as a repeat.
func resolveAdvance(o *order.Order, seq *stage.Sequence, from stage.Key) (stage.Key, error) {
	if _, ok := seq.Lookup(from); !ok {
		return "", errs.NewInvalidTransitionError(o.Status().String(), from.String(),
			"stage is not part of category "+seq.CategoryID())
	}
	next, ok := seq.Successor(from)
	if !ok {
		return "", errs.NewInvalidTransitionError(from.String(), "", "stage has no successor")
	}

	switch o.Status() {
	case from, next.Key():
		return next.Key(), nil
	default:
		return "", errs.NewInvalidTransitionError(o.Status().String(), next.Key().String(),
			"order is no longer in "+from.String())
	}
}

func (h ApplyTransitionCommandHandler) apply(
	ctx context.Context,
	orderID kernel.UUID,
	build func(*order.Order, *stage.Sequence) (services.Transition, error),
) (*order.Order, error) {
	o, outcome, err := h.transact(ctx, orderID, build)
	if err != nil {
		h.metrics.TransitionRejected(errs.Kind(err))
		return nil, err
	}
	if !outcome.Changed {
		return o, nil
	}

	h.metrics.TransitionApplied(o.CategoryID(), o.Status().String())
	if outcome.Exited != nil && h.invalidator != nil {
		if err = h.invalidator.Invalidate(ctx, o.CategoryID()); err != nil {
			h.logger.WarnContext(ctx, "failed to invalidate stage statistics",
				"category", o.CategoryID(), "error", err)
		}
	}
	return o, nil
}

func (h ApplyTransitionCommandHandler) transact(
	ctx context.Context,
	orderID kernel.UUID,
	build func(*order.Order, *stage.Sequence) (services.Transition, error),
) (*order.Order, services.TransitionOutcome, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, services.TransitionOutcome{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, services.TransitionOutcome{}, err
	}

	seq, err := h.catalog.Sequence(o.CategoryID())
	if err != nil {
		return nil, services.TransitionOutcome{}, err
	}

	tr, err := build(o, seq)
	if err != nil {
		return nil, services.TransitionOutcome{}, err
	}

	outcome, err := h.engine.Apply(o, seq, tr)
	if err != nil {
		return nil, services.TransitionOutcome{}, err
	}
	if !outcome.Changed {
		return o, outcome, nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, services.TransitionOutcome{}, err
	}

	if outcome.Exited != nil {
		if err = uow.StatsRepository().RecordDwell(ctx, o.CategoryID(), outcome.Exited.Key, outcome.Exited.Dwell); err != nil {
			return nil, services.TransitionOutcome{}, err
		}
	}

	if outcome.Cancellation != nil {
		if err = uow.CancellationRepository().Add(ctx, *outcome.Cancellation); err != nil {
			return nil, services.TransitionOutcome{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, services.TransitionOutcome{}, err
	}

	return o, outcome, nil
}

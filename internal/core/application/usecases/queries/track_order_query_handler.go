package queries

import (
	"context"
	"log/slog"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
	"tracking/internal/core/domain/services"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

// TrackOrderQueryHandler composes the read model: it reads the order, projects the
// timeline, estimates the remaining time and asks the cancellation policy.
//
// Orders are visible to their customer, their assigned worker and the system. Anyone
// else gets errs.ObjectNotFoundError so order ids cannot be enumerated.
type TrackOrderQueryHandler struct {
	orders    ports.OrderReader
	stats     ports.StatsReader
	catalog   ports.StageCatalog
	estimator services.ETAEstimator
	projector services.TimelineProjector
	policy    services.CancellationPolicy
	metrics   ports.TrackingMetrics
	now       func() time.Time
	logger    *slog.Logger
}

func NewTrackOrderQueryHandler(
	orders ports.OrderReader,
	statsReader ports.StatsReader,
	catalog ports.StageCatalog,
	estimator services.ETAEstimator,
	metrics ports.TrackingMetrics,
	now func() time.Time,
	logger *slog.Logger,
) TrackOrderQueryHandler {
	return TrackOrderQueryHandler{
		orders:    orders,
		stats:     statsReader,
		catalog:   catalog,
		estimator: estimator,
		projector: services.NewTimelineProjector(),
		policy:    services.NewCancellationPolicy(),
		metrics:   metrics,
		now:       now,
		logger:    logger.With("component", "TrackOrderQueryHandler"),
	}
}

func (h TrackOrderQueryHandler) Handle(ctx context.Context, query TrackOrderQuery) (TrackOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return TrackOrderQueryResponse{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return TrackOrderQueryResponse{}, err
	}
	if !canView(o, query.Actor()) {
		return TrackOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID())
	}

	return h.Snapshot(ctx, o)
}

// Snapshot builds the response for an order the caller is already allowed to see.
// Mutation endpoints use it to answer with the committed state.
func (h TrackOrderQueryHandler) Snapshot(ctx context.Context, o *order.Order) (TrackOrderQueryResponse, error) {
	seq, err := h.catalog.Sequence(o.CategoryID())
	if err != nil {
		return TrackOrderQueryResponse{}, err
	}

	timeline, err := h.projector.Project(o, seq)
	if err != nil {
		return TrackOrderQueryResponse{}, err
	}

	eta := h.estimate(ctx, o, seq)
	h.metrics.EstimateServed(eta != nil)

	return TrackOrderQueryResponse{
		Order:                  view(o),
		Timeline:               timeline.Stages,
		CurrentStageIndex:      timeline.CurrentIndex,
		EstimatedTimeRemaining: eta,
		CanCancel:              h.policy.CanCancel(o, seq),
	}, nil
}

// estimate degrades to no ETA when statistics cannot be read.
func (h TrackOrderQueryHandler) estimate(ctx context.Context, o *order.Order, seq *stage.Sequence) *int {
	if o.IsTerminal(seq) {
		return nil
	}
	table, err := h.stats.GetByCategory(ctx, o.CategoryID())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read stage statistics",
			"category", o.CategoryID(), "error", err)
		table = stats.NewTable(o.CategoryID(), nil)
	}
	return h.estimator.Estimate(o, seq, table, h.now())
}

func canView(o *order.Order, actor kernel.Actor) bool {
	switch actor.Role() {
	case kernel.RoleSystem:
		return true
	case kernel.RoleCustomer:
		return actor.ID().IsEqual(o.CustomerID())
	case kernel.RoleWorker:
		worker := o.WorkerID()
		return worker != nil && worker.IsEqual(actor.ID())
	default:
		return false
	}
}

func view(o *order.Order) OrderView {
	return OrderView{
		ID:              o.ID(),
		Status:          o.Status(),
		CategoryID:      o.CategoryID(),
		StageTimestamps: o.StageTimestamps(),
		CancelledAt:     o.CancelledAt(),
		CancelReason:    o.CancelReason(),
		Version:         o.Version(),
	}
}

package inmemory

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
	"tracking/internal/pkg/errs"
)

// orderRepository reads its own staged writes first, then committed state.
type orderRepository struct {
	uow *UnitOfWork
}

func (r orderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if state, ok := r.uow.stagedState(id); ok {
		return r.uow.store.restore(state)
	}
	return r.uow.store.Get(ctx, id)
}

func (r orderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	state := stateOf(aggregate)
	state.Version = 1
	if err := r.uow.write(func() { r.uow.stageOrder(-1, state) }); err != nil {
		return err
	}
	aggregate.MarkPersisted(state.Version)
	return nil
}

// Update fails fast when the committed version already moved on; Commit re-checks.
func (r orderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	id := aggregate.ID().String()
	base := aggregate.Version()
	r.uow.store.mu.RLock()
	current, exists := r.uow.store.orders[id]
	r.uow.store.mu.RUnlock()
	if _, staged := r.uow.stagedState(aggregate.ID()); !staged {
		if !exists {
			return errs.NewObjectNotFoundError("order", id)
		}
		if current.Version != base {
			return errs.NewConflictError("order", id)
		}
	}

	state := stateOf(aggregate)
	state.Version = base + 1
	if err := r.uow.write(func() { r.uow.stageOrder(base, state) }); err != nil {
		return err
	}
	aggregate.MarkPersisted(state.Version)
	return nil
}

func (r orderRepository) ListTimestamps(_ context.Context, categoryID string) ([]order.Timestamps, error) {
	return r.uow.store.listTimestamps(categoryID), nil
}

type statsRepository struct {
	uow *UnitOfWork
}

func (r statsRepository) GetByCategory(ctx context.Context, categoryID string) (stats.Table, error) {
	return r.uow.store.GetByCategory(ctx, categoryID)
}

func (r statsRepository) RecordDwell(_ context.Context, categoryID string, key stage.Key, dwell time.Duration) error {
	if categoryID == "" || key == "" {
		return errs.NewValueIsRequiredError("stage statistics key")
	}
	if dwell < 0 {
		return errs.NewValueIsInvalidError("dwell")
	}
	op := observe(categoryID, key, dwell)
	return r.uow.write(func() { r.uow.statsOps = append(r.uow.statsOps, op) })
}

func (r statsRepository) Replace(_ context.Context, categoryID string, entries []stats.StageDuration) error {
	kept := make([]stats.StageDuration, 0, len(entries))
	for _, e := range entries {
		if e.CategoryID() == categoryID {
			kept = append(kept, e)
		}
	}

	op := func(m map[statsKey]stats.StageDuration) {
		for k := range m {
			if k.categoryID == categoryID {
				delete(m, k)
			}
		}
		for _, e := range kept {
			m[statsKey{categoryID: categoryID, stageKey: e.StageKey()}] = e
		}
	}
	return r.uow.write(func() { r.uow.statsOps = append(r.uow.statsOps, op) })
}

type cancellationRepository struct {
	uow *UnitOfWork
}

func (r cancellationRepository) Add(_ context.Context, record order.CancellationRecord) error {
	if record.IsZero() {
		return errs.NewValueIsRequiredError("cancellation record")
	}

	id := record.OrderID().String()
	r.uow.store.mu.RLock()
	_, exists := r.uow.store.cancellations[id]
	r.uow.store.mu.RUnlock()
	if _, staged := r.uow.cancellations[id]; exists || (r.uow.active && staged) {
		return errs.NewConflictError("cancellation record", id)
	}
	return r.uow.write(func() { r.uow.cancellations[id] = record })
}

func (r cancellationRepository) Get(_ context.Context, orderID kernel.UUID) (order.CancellationRecord, error) {
	id := orderID.String()
	if r.uow.active {
		if record, ok := r.uow.cancellations[id]; ok {
			return record, nil
		}
	}

	r.uow.store.mu.RLock()
	record, ok := r.uow.store.cancellations[id]
	r.uow.store.mu.RUnlock()
	if !ok {
		return order.CancellationRecord{}, errs.NewObjectNotFoundError("cancellation record", id)
	}
	return record, nil
}

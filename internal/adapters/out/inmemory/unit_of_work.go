package inmemory

import (
	"context"
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

// ErrNoTransaction is returned by Commit and Rollback without a preceding Begin.
var ErrNoTransaction = errors.New("no active transaction")

// stagedOrder is an order write waiting for commit. base is the version the write was
// computed from; -1 marks an insert.
type stagedOrder struct {
	base  int
	state order.State
}

// UnitOfWork buffers writes between Begin and Commit and applies them under the store
// lock only if every staged order still has its base version. Without Begin, writes go
// straight to the store.
type UnitOfWork struct {
	store  *Store
	active bool

	orders        map[string]stagedOrder
	orderSeq      []string
	cancellations map[string]order.CancellationRecord
	statsOps      []func(map[statsKey]stats.StageDuration)
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	if uow.active {
		return nil
	}
	uow.active = true
	uow.reset()
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	defer func() {
		uow.active = false
		uow.reset()
	}()

	s := uow.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := uow.check(); err != nil {
		return err
	}
	uow.apply()
	return nil
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	uow.active = false
	uow.reset()
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return orderRepository{uow: uow}
}

func (uow *UnitOfWork) StatsRepository() ports.StatsRepository {
	return statsRepository{uow: uow}
}

func (uow *UnitOfWork) CancellationRepository() ports.CancellationRepository {
	return cancellationRepository{uow: uow}
}

func (uow *UnitOfWork) reset() {
	uow.orders = make(map[string]stagedOrder)
	uow.orderSeq = nil
	uow.cancellations = make(map[string]order.CancellationRecord)
	uow.statsOps = nil
}

// check runs under the store's write lock.
func (uow *UnitOfWork) check() error {
	s := uow.store
	for _, id := range uow.orderSeq {
		staged := uow.orders[id]
		current, exists := s.orders[id]
		switch {
		case staged.base < 0 && exists:
			return errs.NewConflictError("order", id)
		case staged.base >= 0 && !exists:
			return errs.NewObjectNotFoundError("order", id)
		case staged.base >= 0 && current.Version != staged.base:
			return errs.NewConflictError("order", id)
		}
	}
	for id := range uow.cancellations {
		if _, exists := s.cancellations[id]; exists {
			return errs.NewConflictError("cancellation record", id)
		}
	}
	return nil
}

// apply runs under the store's write lock after check succeeded.
func (uow *UnitOfWork) apply() {
	s := uow.store
	for _, id := range uow.orderSeq {
		s.orders[id] = uow.orders[id].state
	}
	for id, record := range uow.cancellations {
		s.cancellations[id] = record
	}
	for _, op := range uow.statsOps {
		op(s.stats)
	}
}

// stageOrder records a write. A second write of the same order keeps the first base.
func (uow *UnitOfWork) stageOrder(base int, state order.State) {
	id := state.ID.String()
	if prev, ok := uow.orders[id]; ok {
		base = prev.base
	} else {
		uow.orderSeq = append(uow.orderSeq, id)
	}
	uow.orders[id] = stagedOrder{base: base, state: state}
}

// commitNow wraps a single write made outside any transaction.
func (uow *UnitOfWork) commitNow(fn func()) error {
	uow.reset()
	fn()
	s := uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	defer uow.reset()

	if err := uow.check(); err != nil {
		return err
	}
	uow.apply()
	return nil
}

func (uow *UnitOfWork) write(fn func()) error {
	if uow.active {
		fn()
		return nil
	}
	return uow.commitNow(fn)
}

func (uow *UnitOfWork) stagedState(id kernel.UUID) (order.State, bool) {
	if !uow.active {
		return order.State{}, false
	}
	staged, ok := uow.orders[id.String()]
	return staged.state, ok
}

func observe(categoryID string, key stage.Key, dwell time.Duration) func(map[statsKey]stats.StageDuration) {
	return func(m map[statsKey]stats.StageDuration) {
		k := statsKey{categoryID: categoryID, stageKey: key}
		current, ok := m[k]
		if !ok {
			first, err := stats.NewStageDuration(categoryID, key, 0, 0)
			if err != nil {
				return
			}
			current = first
		}
		m[k] = current.Observe(dwell)
	}
}

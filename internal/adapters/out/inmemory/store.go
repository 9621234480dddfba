// Package inmemory is a process-local storage backend used when STORAGE=memory. It gives
// the same guarantees as the postgres adapter: a unit of work commits atomically and an
// order write whose base version is stale fails with errs.ConflictError.
package inmemory

import (
	"context"
	"fmt"
	"sync"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

type statsKey struct {
	categoryID string
	stageKey   stage.Key
}

// Store holds orders as plain state so no caller ever shares an aggregate instance.
type Store struct {
	mu            sync.RWMutex
	catalog       ports.StageCatalog
	orders        map[string]order.State
	stats         map[statsKey]stats.StageDuration
	cancellations map[string]order.CancellationRecord
}

func NewStore(catalog ports.StageCatalog) *Store {
	return &Store{
		catalog:       catalog,
		orders:        make(map[string]order.State),
		stats:         make(map[statsKey]stats.StageDuration),
		cancellations: make(map[string]order.CancellationRecord),
	}
}

// Create starts a unit of work over the store.
func (s *Store) Create() ports.UnitOfWork {
	return &UnitOfWork{store: s}
}

// Get implements ports.OrderReader outside of any unit of work.
func (s *Store) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	state, ok := s.orders[id.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return s.restore(state)
}

// GetByCategory implements ports.StatsReader outside of any unit of work.
func (s *Store) GetByCategory(_ context.Context, categoryID string) (stats.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]stats.StageDuration, 0)
	for key, entry := range s.stats {
		if key.categoryID == categoryID {
			entries = append(entries, entry)
		}
	}
	return stats.NewTable(categoryID, entries), nil
}

func (s *Store) restore(state order.State) (*order.Order, error) {
	seq, err := s.catalog.Sequence(state.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("restore order %s: %w", state.ID, err)
	}
	return order.RestoreOrder(seq, state)
}

func (s *Store) listTimestamps(categoryID string) []order.Timestamps {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]order.Timestamps, 0)
	for _, state := range s.orders {
		if state.CategoryID == categoryID {
			out = append(out, state.Timestamps.Clone())
		}
	}
	return out
}

func stateOf(o *order.Order) order.State {
	return order.State{
		ID:           o.ID(),
		CategoryID:   o.CategoryID(),
		CustomerID:   o.CustomerID(),
		WorkerID:     o.WorkerID(),
		Status:       o.Status(),
		Timestamps:   o.StageTimestamps(),
		CancelledAt:  o.CancelledAt(),
		CancelReason: o.CancelReason(),
		CreatedAt:    o.CreatedAt(),
		Version:      o.Version(),
	}
}

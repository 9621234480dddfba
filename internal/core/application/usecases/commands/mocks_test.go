package commands_test

import (
	"context"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
	"tracking/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListTimestamps(ctx context.Context, categoryID string) ([]order.Timestamps, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Timestamps), args.Error(1)
}

type MockStatsRepository struct{ mock.Mock }

func (m *MockStatsRepository) GetByCategory(ctx context.Context, categoryID string) (stats.Table, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(stats.Table), args.Error(1)
}

func (m *MockStatsRepository) RecordDwell(ctx context.Context, categoryID string, key stage.Key, dwell time.Duration) error {
	args := m.Called(ctx, categoryID, key, dwell)
	return args.Error(0)
}

func (m *MockStatsRepository) Replace(ctx context.Context, categoryID string, entries []stats.StageDuration) error {
	args := m.Called(ctx, categoryID, entries)
	return args.Error(0)
}

type MockCancellationRepository struct{ mock.Mock }

func (m *MockCancellationRepository) Add(ctx context.Context, record order.CancellationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCancellationRepository) Get(ctx context.Context, orderID kernel.UUID) (order.CancellationRecord, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(order.CancellationRecord), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) StatsRepository() ports.StatsRepository {
	args := m.Called()
	return args.Get(0).(ports.StatsRepository)
}

func (m *MockUoW) CancellationRepository() ports.CancellationRepository {
	args := m.Called()
	return args.Get(0).(ports.CancellationRepository)
}

type MockTransitionUoWFactory struct{ mock.Mock }

func (m *MockTransitionUoWFactory) Create() commands.TransitionUoW {
	args := m.Called()
	return args.Get(0).(commands.TransitionUoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockStatsUoWFactory struct{ mock.Mock }

func (m *MockStatsUoWFactory) Create() commands.StatsUoW {
	args := m.Called()
	return args.Get(0).(commands.StatsUoW)
}

type MockInvalidator struct{ mock.Mock }

func (m *MockInvalidator) Invalidate(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

type MockMetrics struct{ mock.Mock }

func (m *MockMetrics) TransitionApplied(categoryID, target string) {
	m.Called(categoryID, target)
}

func (m *MockMetrics) TransitionRejected(kind string) {
	m.Called(kind)
}

func (m *MockMetrics) EstimateServed(available bool) {
	m.Called(available)
}

// Package commands contains business operations that modify order lifecycle state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"tracking/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// StatsRepoFactory provides access to the stage statistics repository within a transaction.
	StatsRepoFactory interface {
		StatsRepository() ports.StatsRepository
	}

	// CancellationRepoFactory provides access to the cancellation log within a transaction.
	CancellationRepoFactory interface {
		CancellationRepository() ports.CancellationRepository
	}

	// OrderUoW manages transactions for order-only operations such as intake.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// StatsUoW reads order history and rewrites statistics in one transaction.
	StatsUoW interface {
		TxManager
		OrderRepoFactory
		StatsRepoFactory
	}

	// StatsUoWFactory creates new statistics unit of work instances.
	StatsUoWFactory interface {
		Create() StatsUoW
	}

	// TransitionUoW spans everything one transition writes: the versioned order row,
	// the dwell sample and the cancellation record. Either all of it commits or none.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().Get(ctx, id)
	//   // ... apply the transition
	//   err = uow.OrderRepository().Update(ctx, o)
	//   err = uow.StatsRepository().RecordDwell(ctx, category, exited, dwell)
	//
	//   err = uow.Commit(ctx)
	TransitionUoW interface {
		TxManager
		OrderRepoFactory
		StatsRepoFactory
		CancellationRepoFactory
	}

	// TransitionUoWFactory creates new transition unit of work instances.
	TransitionUoWFactory interface {
		Create() TransitionUoW
	}
)

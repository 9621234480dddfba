package ports

import (
	"context"
)

// UnitOfWorkFactory hands out a fresh UnitOfWork per command. Instances are not shared
// between goroutines.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork groups the writes of one mutation: the versioned order row, the dwell
// sample and the cancellation record commit together or not at all.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit fails when no transaction is open. A lost version race surfaces as
	// errs.ConflictError from OrderRepository().Update or from Commit.
	Commit(ctx context.Context) error

	// Rollback fails when no transaction is open, which makes a deferred Rollback
	// after Commit harmless.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	StatsRepository() StatsRepository
	CancellationRepository() CancellationRepository
}

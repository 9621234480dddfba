// Package postgres provides the GORM-based Unit of Work of the tracking engine. One
// unit of work spans every write of a transition: the versioned order row, the dwell
// sample and the cancellation record commit together or not at all.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, registry)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	o, err := uow.OrderRepository().Get(ctx, id)
//	// ... mutate o
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err // errs.ConflictError when another transaction won
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides isolated transactions
//   - Multiple goroutines should use separate UnitOfWork instances
//   - Order writes are guarded by the version column, not by row locks held across reads
package postgres

import (
	"context"

	"tracking/internal/adapters/out/postgres/cancellationrepo"
	"tracking/internal/adapters/out/postgres/orderrepo"
	"tracking/internal/adapters/out/postgres/statsrepo"
	"tracking/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
type GormUnitOfWorkFactory struct {
	db      *gorm.DB
	catalog ports.StageCatalog
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
func NewGormUnitOfWorkFactory(db *gorm.DB, catalog ports.StageCatalog) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, catalog: catalog}
}

// Create produces a new UnitOfWork instance ready for business transaction management.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:      f.db,
		catalog: f.catalog,
	}
}

// GormUnitOfWork coordinates one database transaction for a business operation.
type GormUnitOfWork struct {
	db      *gorm.DB
	tx      *gorm.DB
	catalog ports.StageCatalog
}

// Begin initiates a new database transaction for the unit of work.
// Multiple calls to Begin on the same instance will not create nested transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes all changes made within the current transaction.
// Returns gorm.ErrInvalidTransaction if no transaction is active.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards all changes made within the current transaction.
// Returns gorm.ErrInvalidTransaction if no transaction is active, which makes a
// deferred Rollback after Commit harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// OrderRepository provides order persistence bound to the current transaction, or to the
// main connection when none is active.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow.catalog)
}

// StatsRepository provides stage statistics persistence bound to the current transaction.
func (uow *GormUnitOfWork) StatsRepository() ports.StatsRepository {
	return statsrepo.NewGormStatsRepository(uow.conn())
}

// CancellationRepository provides the cancellation log bound to the current transaction.
func (uow *GormUnitOfWork) CancellationRepository() ports.CancellationRepository {
	return cancellationrepo.NewGormCancellationRepository(uow.conn())
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// Migrate creates or updates every table the adapters use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&statsrepo.StageStatsDTO{},
		&cancellationrepo.CancellationDTO{},
	)
}

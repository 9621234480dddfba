package cancellationrepo

import (
	"context"
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCancellationRepository implements CancellationRepository using GORM.
type GormCancellationRepository struct {
	db *gorm.DB
}

func NewGormCancellationRepository(db *gorm.DB) *GormCancellationRepository {
	return &GormCancellationRepository{db: db}
}

// Add inserts the record; an existing record for the order yields errs.ConflictError.
func (r *GormCancellationRepository) Add(ctx context.Context, record order.CancellationRecord) error {
	if record.IsZero() {
		return errs.NewValueIsRequiredError("cancellation record")
	}

	dto := fromDomain(record)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewConflictError("cancellation record", record.OrderID().String())
	}
	return nil
}

func (r *GormCancellationRepository) Get(ctx context.Context, orderID kernel.UUID) (order.CancellationRecord, error) {
	var dto CancellationDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order.CancellationRecord{}, errs.NewObjectNotFoundError("cancellation record", orderID.String())
		}
		return order.CancellationRecord{}, err
	}
	return toDomain(dto)
}

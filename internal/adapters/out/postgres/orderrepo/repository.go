package orderrepo

import (
	"context"
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	catalog ports.StageCatalog
}

// NewGormOrderRepository creates a new GORM order repository. The catalog is needed to
// restore aggregates against their category's stage sequence.
func NewGormOrderRepository(db *gorm.DB, catalog ports.StageCatalog) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		catalog: catalog,
	}
}

// Add saves a new order to the database at version 1. An existing id yields
// errs.ConflictError when the connection was opened with TranslateError.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = 1
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewConflictError("order", aggregate.ID().String())
		}
		return err
	}

	aggregate.MarkPersisted(dto.Version)
	return nil
}

// Update writes the order only if the stored version still equals aggregate.Version().
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select(updatableColumns).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		return errs.NewConflictError("order", aggregate.ID().String())
	}

	aggregate.MarkPersisted(dto.Version)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	seq, err := r.catalog.Sequence(dto.CategoryID)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, seq)
}

// ListTimestamps loads only the stage_timestamps column of a category's orders.
func (r *GormOrderRepository) ListTimestamps(ctx context.Context, categoryID string) ([]order.Timestamps, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Select("id", "stage_timestamps").
		Where("category_id = ?", categoryID).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	out := make([]order.Timestamps, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, toTimestamps(dto.StageTimestamps))
	}
	return out, nil
}

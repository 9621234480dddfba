// Package cancellationrepo persists the append-only cancellation audit log with GORM.
package cancellationrepo

import (
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// CancellationDTO is one cancellation record. The order id is the primary key, which
// enforces at most one record per order.
type CancellationDTO struct {
	OrderID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Reason          string    `gorm:"size:500"`
	InitiatedByID   uuid.UUID `gorm:"type:uuid;not null"`
	InitiatedByRole string    `gorm:"size:16;not null"`
	CancelledAt     time.Time `gorm:"not null"`
}

func (CancellationDTO) TableName() string {
	return "cancellation_records"
}

func fromDomain(r order.CancellationRecord) CancellationDTO {
	return CancellationDTO{
		OrderID:         r.OrderID().Bytes(),
		Reason:          r.Reason(),
		InitiatedByID:   r.InitiatedBy().ID().Bytes(),
		InitiatedByRole: string(r.InitiatedBy().Role()),
		CancelledAt:     r.Timestamp(),
	}
}

func toDomain(dto CancellationDTO) (order.CancellationRecord, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return order.CancellationRecord{}, err
	}
	actorID, err := kernel.UUIDFromBytes(dto.InitiatedByID[:])
	if err != nil {
		return order.CancellationRecord{}, err
	}
	role, err := kernel.ParseRole(dto.InitiatedByRole)
	if err != nil {
		return order.CancellationRecord{}, err
	}
	actor, err := kernel.NewActor(actorID, role)
	if err != nil {
		return order.CancellationRecord{}, err
	}
	return order.NewCancellationRecord(orderID, dto.Reason, actor, dto.CancelledAt)
}

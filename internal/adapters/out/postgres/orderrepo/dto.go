// Package orderrepo persists order aggregates with GORM. An order, including all of its
// stage entry times, is a single row so readers never observe half of a transition.
package orderrepo

import (
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID              uuid.UUID            `gorm:"type:uuid;primaryKey"`
	CategoryID      string               `gorm:"size:64;not null;index"`
	CustomerID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	WorkerID        *uuid.UUID           `gorm:"type:uuid;index"`
	Status          string               `gorm:"size:32;not null"`
	StageTimestamps map[string]time.Time `gorm:"type:jsonb;serializer:json;not null"`
	CancelledAt     *time.Time
	CancelReason    string    `gorm:"size:500"`
	CreatedAt       time.Time `gorm:"not null"`
	Version         int       `gorm:"not null"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// updatableColumns are the columns a transition may change.
var updatableColumns = []string{"worker_id", "status", "stage_timestamps", "cancelled_at", "cancel_reason", "version"}

func fromDomain(o *order.Order) OrderDTO {
	var workerID *uuid.UUID
	if id := o.WorkerID(); id != nil {
		raw := id.Bytes()
		workerID = &raw
	}

	stamps := make(map[string]time.Time)
	for key, at := range o.StageTimestamps() {
		stamps[key.String()] = at
	}

	return OrderDTO{
		ID:              o.ID().Bytes(),
		CategoryID:      o.CategoryID(),
		CustomerID:      o.CustomerID().Bytes(),
		WorkerID:        workerID,
		Status:          o.Status().String(),
		StageTimestamps: stamps,
		CancelledAt:     o.CancelledAt(),
		CancelReason:    o.CancelReason(),
		CreatedAt:       o.CreatedAt(),
		Version:         o.Version(),
	}
}

func toTimestamps(raw map[string]time.Time) order.Timestamps {
	stamps := make(order.Timestamps, len(raw))
	for key, at := range raw {
		stamps[stage.Key(key)] = at.UTC()
	}
	return stamps
}

func toDomain(dto OrderDTO, seq *stage.Sequence) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	var workerID *kernel.UUID
	if dto.WorkerID != nil {
		wID, workerErr := kernel.UUIDFromBytes((*dto.WorkerID)[:])
		if workerErr != nil {
			return nil, workerErr
		}
		workerID = &wID
	}

	return order.RestoreOrder(seq, order.State{
		ID:           id,
		CategoryID:   dto.CategoryID,
		CustomerID:   customerID,
		WorkerID:     workerID,
		Status:       stage.Key(dto.Status),
		Timestamps:   toTimestamps(dto.StageTimestamps),
		CancelledAt:  dto.CancelledAt,
		CancelReason: dto.CancelReason,
		CreatedAt:    dto.CreatedAt,
		Version:      dto.Version,
	})
}

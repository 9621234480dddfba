package http

import (
	"time"

	"tracking/internal/core/application/usecases/queries"

	"github.com/google/uuid"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Order is the order part of a tracking snapshot.
type Order struct {
	Id              uuid.UUID            `json:"id"`
	Status          string               `json:"status"`
	CategoryId      string               `json:"categoryId"`
	StageTimestamps map[string]time.Time `json:"stageTimestamps"`
	CancelledAt     *time.Time           `json:"cancelledAt"`
	CancelReason    *string              `json:"cancelReason"`
	Version         int                  `json:"version"`
}

type TimelineStage struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	RankIndex   int        `json:"rankIndex"`
	Timestamp   *time.Time `json:"timestamp"`
	IsCompleted bool       `json:"isCompleted"`
	IsCurrent   bool       `json:"isCurrent"`
}

// Tracking is the polled snapshot. EstimatedTimeRemaining is in minutes and null when unknown.
type Tracking struct {
	Order                  Order           `json:"order"`
	Timeline               []TimelineStage `json:"timeline"`
	CurrentStageIndex      int             `json:"currentStageIndex"`
	EstimatedTimeRemaining *int            `json:"estimatedTimeRemaining"`
	CanCancel              bool            `json:"canCancel"`
}

// PatchOrder is the body of PATCH /api/v1/orders/:id.
type PatchOrder struct {
	Action       string `json:"action"`
	CancelReason string `json:"cancelReason"`
	TargetStage  string `json:"targetStage"`
	FromStage    string `json:"fromStage"`
}

// NewOrder is the body of POST /api/v1/orders. The id is generated when omitted.
type NewOrder struct {
	Id         *uuid.UUID `json:"id"`
	CategoryId string     `json:"categoryId"`
	CustomerId uuid.UUID  `json:"customerId"`
}

func toTracking(r queries.TrackOrderQueryResponse) Tracking {
	stamps := make(map[string]time.Time, len(r.Order.StageTimestamps))
	for key, at := range r.Order.StageTimestamps {
		stamps[key.String()] = at
	}

	var reason *string
	if r.Order.CancelledAt != nil {
		reason = &r.Order.CancelReason
	}

	timeline := make([]TimelineStage, len(r.Timeline))
	for i, s := range r.Timeline {
		timeline[i] = TimelineStage{
			Key:         s.Key.String(),
			Label:       s.Label,
			Description: s.Description,
			RankIndex:   s.RankIndex,
			Timestamp:   s.Timestamp,
			IsCompleted: s.IsCompleted,
			IsCurrent:   s.IsCurrent,
		}
	}

	return Tracking{
		Order: Order{
			Id:              r.Order.ID.Bytes(),
			Status:          r.Order.Status.String(),
			CategoryId:      r.Order.CategoryID,
			StageTimestamps: stamps,
			CancelledAt:     r.Order.CancelledAt,
			CancelReason:    reason,
			Version:         r.Order.Version,
		},
		Timeline:               timeline,
		CurrentStageIndex:      r.CurrentStageIndex,
		EstimatedTimeRemaining: r.EstimatedTimeRemaining,
		CanCancel:              r.CanCancel,
	}
}

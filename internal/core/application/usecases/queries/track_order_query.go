// Package queries contains read operations of the tracking engine. Queries never
// mutate state and return value objects detached from the aggregates they read.
package queries

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/services"
	"tracking/internal/pkg/guard"
)

var (
	ErrTrackOrderQueryIsNotConstructed = errors.New(
		"TrackOrderQuery must be created via NewTrackOrderQuery constructor",
	)
)

// TrackOrderQuery asks for the current tracking snapshot of one order on behalf of an actor.
//
// Example:
//
//	query, err := NewTrackOrderQuery(orderID, customer)
//	if err != nil {
//	    return err
//	}
//	snapshot, err := handler.Handle(ctx, query)
type TrackOrderQuery struct {
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewTrackOrderQuery(orderID kernel.UUID, actor kernel.Actor) (TrackOrderQuery, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return TrackOrderQuery{}, err
	}
	return TrackOrderQuery{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q TrackOrderQuery) Validate() error {
	return q.guard.Validate(ErrTrackOrderQueryIsNotConstructed)
}

func (q TrackOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q TrackOrderQuery) Actor() kernel.Actor {
	return q.actor
}

// OrderView is the order part of a tracking snapshot.
type OrderView struct {
	ID              kernel.UUID
	Status          stage.Key
	CategoryID      string
	StageTimestamps map[stage.Key]time.Time
	CancelledAt     *time.Time
	CancelReason    string
	Version         int
}

// TrackOrderQueryResponse is the composed snapshot a client polls.
type TrackOrderQueryResponse struct {
	Order             OrderView
	Timeline          []services.TimelineStage
	CurrentStageIndex int
	// EstimatedTimeRemaining is in whole minutes; nil when unknown or terminal.
	EstimatedTimeRemaining *int
	CanCancel              bool
}

package services

import (
	"time"

	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
)

// TimelineStage is one row of the client-facing stage list. It is never stored.
type TimelineStage struct {
	Key         stage.Key
	Label       string
	Description string
	RankIndex   int
	Timestamp   *time.Time
	IsCompleted bool
	IsCurrent   bool
}

// Timeline is the projection of an order onto its category's stage sequence.
type Timeline struct {
	Stages []TimelineStage
	// CurrentIndex is the position of the current stage, the sequence length once
	// completed, or the position of the last entered stage once cancelled.
	CurrentIndex int
}

// TimelineProjector derives timelines. It is pure.
type TimelineProjector struct{}

func NewTimelineProjector() TimelineProjector {
	return TimelineProjector{}
}

// Project lists every stage of seq in rank order. CANCELLED never appears as a row.
func (TimelineProjector) Project(o *order.Order, seq *stage.Sequence) (Timeline, error) {
	if err := o.Validate(); err != nil {
		return Timeline{}, err
	}

	stamps := o.StageTimestamps()
	completed := seq.IsTerminal(o.Status()) && !o.IsCancelled()

	current := 0
	switch {
	case completed:
		current = seq.Len()
	case o.IsCancelled():
		if last, ok := stamps.LastEntered(seq); ok {
			current, _ = seq.Position(last.Key())
		}
	default:
		current, _ = seq.Position(o.Status())
	}

	stages := seq.Stages()
	out := make([]TimelineStage, 0, len(stages))
	for i, def := range stages {
		row := TimelineStage{
			Key:         def.Key(),
			Label:       def.Label(),
			Description: def.Description(),
			RankIndex:   i,
		}
		at, entered := stamps.Get(def.Key())
		if entered {
			row.Timestamp = &at
		}
		switch {
		case completed:
			row.IsCompleted = true
		case o.IsCancelled():
			row.IsCompleted = entered && i < current
		default:
			row.IsCompleted = entered && i < current
			row.IsCurrent = i == current
		}
		out = append(out, row)
	}

	return Timeline{Stages: out, CurrentIndex: current}, nil
}

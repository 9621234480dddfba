package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
	"tracking/internal/pkg/errs"
)

const (
	DefaultETAMinSamples = 3
	DefaultETAMinMinutes = 1
)

// ETAEstimator predicts the minutes left until an order reaches its terminal stage
// from historical dwell averages of its category.
type ETAEstimator struct {
	minSamples int
	minMinutes int
}

// NewETAEstimator creates an estimator that needs minSamples samples for every
// remaining stage and never reports less than minMinutes.
func NewETAEstimator(minSamples, minMinutes int) (ETAEstimator, error) {
	if minSamples < 1 {
		return ETAEstimator{}, errs.NewValueIsOutOfRangeError("minSamples", minSamples, 1, math.MaxInt32)
	}
	if minMinutes < 0 {
		return ETAEstimator{}, errs.NewValueIsOutOfRangeError("minMinutes", minMinutes, 0, math.MaxInt32)
	}
	return ETAEstimator{minSamples: minSamples, minMinutes: minMinutes}, nil
}

func DefaultETAEstimator() ETAEstimator {
	return ETAEstimator{minSamples: DefaultETAMinSamples, minMinutes: DefaultETAMinMinutes}
}

// Estimate returns nil when the order is terminal or history is insufficient.
func (e ETAEstimator) Estimate(o *order.Order, seq *stage.Sequence, table stats.Table, now time.Time) *int {
	minutes, err := e.estimate(o, seq, table, now)
	if err != nil {
		return nil
	}
	return &minutes
}

func (e ETAEstimator) estimate(o *order.Order, seq *stage.Sequence, table stats.Table, now time.Time) (int, error) {
	if err := o.Validate(); err != nil {
		return 0, err
	}
	if o.IsTerminal(seq) {
		return 0, errors.New("order is terminal")
	}
	current, ok := seq.Position(o.Status())
	if !ok {
		return 0, errs.NewObjectNotFoundError("stage", o.Status().String())
	}

	var remaining time.Duration
	for i := current; i < seq.Len(); i++ {
		def := seq.At(i)
		if def.IsTerminal() {
			continue
		}
		s, ok := table.Lookup(def.Key())
		if !ok || s.Samples() < e.minSamples {
			return 0, fmt.Errorf("%w: stage %s", errs.ErrInsufficientHistory, def.Key())
		}
		avg := s.Average()
		if i == current {
			entered, _ := o.EnteredAt(def.Key())
			elapsed := now.Sub(entered)
			if elapsed < 0 {
				elapsed = 0
			}
			avg = max(0, avg-elapsed)
		}
		remaining += avg
	}

	minutes := int(math.Ceil(remaining.Minutes()))
	return max(minutes, e.minMinutes), nil
}

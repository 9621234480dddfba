// Package stats models historical stage dwell times per (category, stage), the input of
// the ETA estimator.
package stats

import (
	"fmt"
	"time"

	"tracking/internal/core/domain/model/stage"
	"tracking/internal/pkg/errs"
)

// IncrementalMean folds one sample into an average over count prior samples.
func IncrementalMean(oldAvg float64, count int, sample float64) float64 {
	return oldAvg + (sample-oldAvg)/float64(count+1)
}

// StageDuration is the rolling average dwell of one stage of one category.
type StageDuration struct {
	categoryID string
	stageKey   stage.Key
	average    time.Duration
	samples    int
}

func NewStageDuration(categoryID string, key stage.Key, average time.Duration, samples int) (StageDuration, error) {
	if categoryID == "" {
		return StageDuration{}, errs.NewValueIsRequiredError("categoryID")
	}
	if key == "" {
		return StageDuration{}, errs.NewValueIsRequiredError("stageKey")
	}
	if samples < 0 {
		return StageDuration{}, errs.NewValueIsInvalidErrorWithCause("samples", fmt.Errorf("%d is negative", samples))
	}
	if average < 0 {
		return StageDuration{}, errs.NewValueIsInvalidErrorWithCause("average", fmt.Errorf("%s is negative", average))
	}
	return StageDuration{categoryID: categoryID, stageKey: key, average: average, samples: samples}, nil
}

func (s StageDuration) CategoryID() string {
	return s.categoryID
}

func (s StageDuration) StageKey() stage.Key {
	return s.stageKey
}

func (s StageDuration) Average() time.Duration {
	return s.average
}

func (s StageDuration) Samples() int {
	return s.samples
}

// Observe returns the statistic with one more dwell sample folded in.
func (s StageDuration) Observe(dwell time.Duration) StageDuration {
	avg := IncrementalMean(s.average.Seconds(), s.samples, dwell.Seconds())
	s.average = time.Duration(avg * float64(time.Second))
	s.samples++
	return s
}

// Table is a read-only snapshot of every stage statistic of one category.
type Table struct {
	categoryID string
	byStage    map[stage.Key]StageDuration
}

// NewTable indexes stats by stage. Entries of other categories are ignored.
func NewTable(categoryID string, entries []StageDuration) Table {
	byStage := make(map[stage.Key]StageDuration, len(entries))
	for _, e := range entries {
		if e.categoryID == categoryID {
			byStage[e.stageKey] = e
		}
	}
	return Table{categoryID: categoryID, byStage: byStage}
}

func (t Table) CategoryID() string {
	return t.categoryID
}

func (t Table) Lookup(key stage.Key) (StageDuration, bool) {
	s, ok := t.byStage[key]
	return s, ok
}

// Entries returns the statistics in no particular order.
func (t Table) Entries() []StageDuration {
	out := make([]StageDuration, 0, len(t.byStage))
	for _, s := range t.byStage {
		out = append(out, s)
	}
	return out
}

// Aggregate rebuilds the statistics of a category from historical stage entry times.
// The dwell of a stage is the gap between its entry and the entry of the next stage;
// stages whose successor was never entered (current or abandoned by cancellation) and
// out-of-order pairs contribute nothing.
func Aggregate(seq *stage.Sequence, timelines []map[stage.Key]time.Time) []StageDuration {
	acc := make(map[stage.Key]StageDuration)
	stages := seq.Stages()
	for _, entered := range timelines {
		for i := 0; i+1 < len(stages); i++ {
			from, okFrom := entered[stages[i].Key()]
			to, okTo := entered[stages[i+1].Key()]
			if !okFrom || !okTo || to.Before(from) {
				continue
			}
			s, ok := acc[stages[i].Key()]
			if !ok {
				s = StageDuration{categoryID: seq.CategoryID(), stageKey: stages[i].Key()}
			}
			acc[stages[i].Key()] = s.Observe(to.Sub(from))
		}
	}

	out := make([]StageDuration, 0, len(acc))
	for _, def := range stages {
		if s, ok := acc[def.Key()]; ok {
			out = append(out, s)
		}
	}
	return out
}

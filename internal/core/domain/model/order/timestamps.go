package order

import (
	"fmt"
	"time"

	"tracking/internal/core/domain/model/stage"
	"tracking/internal/pkg/errs"
)

// Timestamps maps stage keys to the time the order first entered them.
type Timestamps map[stage.Key]time.Time

// Get returns the entry time of key.
func (t Timestamps) Get(key stage.Key) (time.Time, bool) {
	at, ok := t[key]
	return at, ok
}

// Has reports whether key has been entered.
func (t Timestamps) Has(key stage.Key) bool {
	_, ok := t[key]
	return ok
}

// Clone returns an independent copy.
func (t Timestamps) Clone() Timestamps {
	out := make(Timestamps, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// ValidateAgainst checks that every key belongs to seq and that entry times never
// decrease with stage rank.
func (t Timestamps) ValidateAgainst(seq *stage.Sequence) error {
	for key := range t {
		if _, ok := seq.Lookup(key); !ok {
			return errs.NewValueIsInvalidErrorWithCause(
				"stageTimestamps",
				fmt.Errorf("stage %s is not part of category %s", key, seq.CategoryID()),
			)
		}
	}

	var (
		prevKey stage.Key
		prevAt  time.Time
		seen    bool
	)
	for _, def := range seq.Stages() {
		at, ok := t[def.Key()]
		if !ok {
			continue
		}
		if seen && at.Before(prevAt) {
			return errs.NewValueIsInvalidErrorWithCause(
				"stageTimestamps",
				fmt.Errorf("%s entered at %s before %s at %s",
					def.Key(), at.Format(time.RFC3339Nano), prevKey, prevAt.Format(time.RFC3339Nano)),
			)
		}
		prevKey, prevAt, seen = def.Key(), at, true
	}
	return nil
}

// LastEntered returns the highest-ranked stage of seq that has a timestamp.
func (t Timestamps) LastEntered(seq *stage.Sequence) (stage.Definition, bool) {
	stages := seq.Stages()
	for i := len(stages) - 1; i >= 0; i-- {
		if t.Has(stages[i].Key()) {
			return stages[i], true
		}
	}
	return stage.Definition{}, false
}

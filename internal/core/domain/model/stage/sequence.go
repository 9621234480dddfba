package stage

import (
	"fmt"
	"sort"

	"tracking/internal/pkg/errs"
)

// Sequence is the ordered stage catalogue of a single order category.
//
// Invariants enforced by NewSequence:
//   - at least two stages, unique keys and unique ranks
//   - exactly one terminal stage, and it has the highest rank
//   - the cancellable boundary names a non-terminal stage of the sequence
type Sequence struct {
	categoryID string
	stages     []Definition
	positions  map[Key]int
	boundary   Key
}

// NewSequence sorts defs by rank and validates the invariants above.
//
// Example:
//
//	seq, err := stage.NewSequence("home-cleaning", defs, stage.Accepted)
//	if err != nil {
//	    return fmt.Errorf("load category: %w", err)
//	}
func NewSequence(categoryID string, defs []Definition, boundary Key) (*Sequence, error) {
	if categoryID == "" {
		return nil, errs.NewValueIsRequiredError("categoryID")
	}
	if len(defs) < 2 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"stages",
			fmt.Errorf("category %s needs at least 2 stages, got %d", categoryID, len(defs)),
		)
	}

	sorted := make([]Definition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order() < sorted[j].Order() })

	positions := make(map[Key]int, len(sorted))
	for i, def := range sorted {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, dup := positions[def.Key()]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"stages",
				fmt.Errorf("category %s: duplicate stage %s", categoryID, def.Key()),
			)
		}
		if i > 0 && sorted[i-1].Order() == def.Order() {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"stages",
				fmt.Errorf("category %s: stages %s and %s share rank %d",
					categoryID, sorted[i-1].Key(), def.Key(), def.Order()),
			)
		}
		last := i == len(sorted)-1
		if def.IsTerminal() != last {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"stages",
				fmt.Errorf("category %s: only the last stage may be terminal (stage %s)", categoryID, def.Key()),
			)
		}
		positions[def.Key()] = i
	}

	pos, ok := positions[boundary]
	if !ok {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"cancellableBoundary",
			fmt.Errorf("category %s has no stage %s", categoryID, boundary),
		)
	}
	if sorted[pos].IsTerminal() {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"cancellableBoundary",
			fmt.Errorf("category %s: boundary %s is terminal", categoryID, boundary),
		)
	}

	return &Sequence{
		categoryID: categoryID,
		stages:     sorted,
		positions:  positions,
		boundary:   boundary,
	}, nil
}

func (s *Sequence) CategoryID() string {
	return s.categoryID
}

// Stages returns the definitions in ascending rank. The slice is a copy.
func (s *Sequence) Stages() []Definition {
	out := make([]Definition, len(s.stages))
	copy(out, s.stages)
	return out
}

func (s *Sequence) Len() int {
	return len(s.stages)
}

// At returns the definition at a rank position.
func (s *Sequence) At(position int) Definition {
	return s.stages[position]
}

// Initial is the stage new orders are created in.
func (s *Sequence) Initial() Definition {
	return s.stages[0]
}

// Final is the terminal stage.
func (s *Sequence) Final() Definition {
	return s.stages[len(s.stages)-1]
}

func (s *Sequence) Lookup(key Key) (Definition, bool) {
	pos, ok := s.positions[key]
	if !ok {
		return Definition{}, false
	}
	return s.stages[pos], true
}

// Position returns the zero-based rank position of key.
func (s *Sequence) Position(key Key) (int, bool) {
	pos, ok := s.positions[key]
	return pos, ok
}

// Successor returns the stage immediately after key, if any.
func (s *Sequence) Successor(key Key) (Definition, bool) {
	pos, ok := s.positions[key]
	if !ok || pos+1 >= len(s.stages) {
		return Definition{}, false
	}
	return s.stages[pos+1], true
}

// CancellableBoundary is the last stage at which customer cancellation is permitted.
func (s *Sequence) CancellableBoundary() Definition {
	return s.stages[s.positions[s.boundary]]
}

// IsTerminal reports whether key is CANCELLED or the sequence's terminal stage.
func (s *Sequence) IsTerminal(key Key) bool {
	if key == Cancelled {
		return true
	}
	def, ok := s.Lookup(key)
	return ok && def.IsTerminal()
}

package stage

import (
	"fmt"
	"sort"

	"tracking/internal/pkg/errs"
)

// Registry maps category ids to their stage sequences. It is read-only after construction.
type Registry struct {
	sequences map[string]*Sequence
}

func NewRegistry(sequences ...*Sequence) (*Registry, error) {
	if len(sequences) == 0 {
		return nil, errs.NewValueIsRequiredError("categories")
	}
	byID := make(map[string]*Sequence, len(sequences))
	for _, seq := range sequences {
		if seq == nil {
			return nil, errs.NewValueIsRequiredError("sequence")
		}
		if _, dup := byID[seq.CategoryID()]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"categories",
				fmt.Errorf("category %s declared twice", seq.CategoryID()),
			)
		}
		byID[seq.CategoryID()] = seq
	}
	return &Registry{sequences: byID}, nil
}

// Sequence returns the stage sequence of a category or an ObjectNotFoundError.
func (r *Registry) Sequence(categoryID string) (*Sequence, error) {
	seq, ok := r.sequences[categoryID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("category", categoryID)
	}
	return seq, nil
}

// Categories lists the known category ids in lexical order.
func (r *Registry) Categories() []string {
	ids := make([]string, 0, len(r.sequences))
	for id := range r.sequences {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

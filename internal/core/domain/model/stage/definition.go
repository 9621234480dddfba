package stage

import (
	"errors"
	"fmt"
	"strings"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

var ErrDefinitionIsNotConstructed = errors.New("Definition must be created via NewDefinition")

// Key names a lifecycle stage. Keys are upper-case identifiers such as ACCEPTED.
type Key string

// Well-known keys of the shipped catalogue. Categories may define others.
const (
	Pending    Key = "PENDING"
	Searching  Key = "SEARCHING"
	Accepted   Key = "ACCEPTED"
	OnTheWay   Key = "ON_THE_WAY"
	InProgress Key = "IN_PROGRESS"
	Completed  Key = "COMPLETED"

	// Cancelled is the terminal key reachable from any non-terminal stage.
	Cancelled Key = "CANCELLED"
)

func (k Key) String() string {
	return string(k)
}

// ParseKey normalizes user input ("in_progress", " Accepted ") into a Key.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToUpper(strings.TrimSpace(s)))
	if k == "" {
		return "", errs.NewValueIsRequiredError("stage")
	}
	return k, nil
}

// DefinitionSpec carries the raw attributes of a stage, typically decoded from the catalogue file.
type DefinitionSpec struct {
	Key         Key
	Order       int
	Label       string
	Description string
	Terminal    bool

	// DrivenBy is the role allowed to move an order into this stage: kernel.RoleWorker
	// or kernel.RoleSystem. Initial stages are never entered through a transition.
	DrivenBy kernel.Role

	// AssignsWorker marks the stage whose entry binds the accepting worker to the order.
	AssignsWorker bool
}

// Definition is one immutable entry of a Sequence.
type Definition struct {
	key           Key
	order         int
	label         string
	description   string
	terminal      bool
	drivenBy      kernel.Role
	assignsWorker bool
	guard         guard.ConstructorGuard
}

func NewDefinition(spec DefinitionSpec) (Definition, error) {
	if spec.Key == "" {
		return Definition{}, errs.NewValueIsRequiredError("stage key")
	}
	if spec.Key == Cancelled {
		return Definition{}, errs.NewValueIsInvalidErrorWithCause(
			"stage key",
			fmt.Errorf("%s is reserved", Cancelled),
		)
	}
	if spec.Label == "" {
		return Definition{}, errs.NewValueIsRequiredError("stage label")
	}
	if spec.DrivenBy != kernel.RoleWorker && spec.DrivenBy != kernel.RoleSystem {
		return Definition{}, errs.NewValueIsInvalidErrorWithCause(
			"drivenBy",
			fmt.Errorf("stage %s: %q must be worker or system", spec.Key, spec.DrivenBy),
		)
	}
	if spec.AssignsWorker && spec.DrivenBy != kernel.RoleWorker {
		return Definition{}, errs.NewValueIsInvalidErrorWithCause(
			"assignsWorker",
			fmt.Errorf("stage %s assigns a worker but is driven by %s", spec.Key, spec.DrivenBy),
		)
	}

	return Definition{
		key:           spec.Key,
		order:         spec.Order,
		label:         spec.Label,
		description:   spec.Description,
		terminal:      spec.Terminal,
		drivenBy:      spec.DrivenBy,
		assignsWorker: spec.AssignsWorker,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (d Definition) Validate() error {
	return d.guard.Validate(ErrDefinitionIsNotConstructed)
}

func (d Definition) Key() Key {
	return d.key
}

// Order is the rank used for sorting; gaps are allowed.
func (d Definition) Order() int {
	return d.order
}

func (d Definition) Label() string {
	return d.label
}

func (d Definition) Description() string {
	return d.description
}

func (d Definition) IsTerminal() bool {
	return d.terminal
}

func (d Definition) DrivenBy() kernel.Role {
	return d.drivenBy
}

func (d Definition) AssignsWorker() bool {
	return d.assignsWorker
}

package kernel

import (
	"errors"
	"fmt"
	"strings"

	"tracking/internal/pkg/errs"
)

var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor")

// Role is the kind of party issuing a request.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleSystem   Role = "system"
)

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleWorker, RoleSystem:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

// Actor is the authenticated identity behind a query or a mutation. Authentication
// itself happens upstream; the engine only authorizes.
type Actor struct {
	id   UUID
	role Role
}

func NewActor(id UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	parsed, err := ParseRole(string(role))
	if err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: parsed}, nil
}

func (a Actor) ID() UUID {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) Validate() error {
	if a.role == "" {
		return ErrActorIsNotConstructed
	}
	return a.id.Validate()
}

// Is reports whether the actor has the given role and identity.
func (a Actor) Is(role Role, id UUID) bool {
	return a.role == role && a.id.IsEqual(id)
}

func (a Actor) String() string {
	return fmt.Sprintf("%s %s", a.role, a.id)
}

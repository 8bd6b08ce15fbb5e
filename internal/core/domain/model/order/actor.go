package order

import (
	"fmt"

	"pharmadelivery/internal/pkg/errs"
)

// Actor is the role on whose behalf a transition is requested.
type Actor string

const (
	ActorAdmin   Actor = "admin"
	ActorManager Actor = "manager"
	ActorCourier Actor = "courier"
	ActorSystem  Actor = "system"
)

// ParseActor accepts the role names carried in access tokens.
func ParseActor(s string) (Actor, error) {
	a := Actor(s)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

func (a Actor) Validate() error {
	switch a {
	case ActorAdmin, ActorManager, ActorCourier, ActorSystem:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("actor", fmt.Errorf("%q is not a known role", string(a)))
	}
}

func (a Actor) String() string {
	return string(a)
}

// IsStaff reports back-office roles.
func (a Actor) IsStaff() bool {
	return a == ActorAdmin || a == ActorManager
}

// CanRequest gates transitions by role. Couriers only move orders out of the
// pharmacy and mark them delivered.
func (a Actor) CanRequest(target Status) bool {
	switch a {
	case ActorAdmin, ActorManager, ActorSystem:
		return true
	case ActorCourier:
		return target == OnTheWay || target == Delivered
	default:
		return false
	}
}

// CanReactivate reports whether the role may reverse a cancellation.
func (a Actor) CanReactivate() bool {
	return a.IsStaff()
}

package commands

import (
	"errors"
	"strings"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/pkg/errs"
	"pharmadelivery/internal/pkg/guard"
)

var ErrAssignDeliverymanCommandIsNotConstructed = errors.New(
	"AssignDeliverymanCommand must be created via NewAssignDeliverymanCommand constructor",
)

// AssignDeliverymanCommand sets the courier and vehicle responsible for an order.
//
// Example:
//
//	cmd, err := NewAssignDeliverymanCommand(orderID, deliverymanID, "ABC1D23", order.ActorManager)
type AssignDeliverymanCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	deliverymanID kernel.UUID
	licensePlate  string
	actor         order.Actor

	guard guard.ConstructorGuard
}

func NewAssignDeliverymanCommand(
	orderID, deliverymanID kernel.UUID,
	licensePlate string,
	actor order.Actor,
) (AssignDeliverymanCommand, error) {
	if err := errors.Join(orderID.Validate(), deliverymanID.Validate(), actor.Validate()); err != nil {
		return AssignDeliverymanCommand{}, err
	}
	if !actor.IsStaff() {
		return AssignDeliverymanCommand{}, errs.NewForbiddenError(actor.String(), "assign a deliveryman")
	}

	return AssignDeliverymanCommand{
		orderID:       orderID,
		deliverymanID: deliverymanID,
		licensePlate:  strings.TrimSpace(licensePlate),
		actor:         actor,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c AssignDeliverymanCommand) Validate() error {
	return c.guard.Validate(ErrAssignDeliverymanCommandIsNotConstructed)
}

func (c AssignDeliverymanCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AssignDeliverymanCommand) DeliverymanID() kernel.UUID {
	return c.deliverymanID
}

func (c AssignDeliverymanCommand) LicensePlate() string {
	return c.licensePlate
}

func (c AssignDeliverymanCommand) Actor() order.Actor {
	return c.actor
}

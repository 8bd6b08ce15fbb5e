package commands

import (
	"errors"
	"strings"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/pkg/guard"
)

var ErrReactivateOrderCommandIsNotConstructed = errors.New(
	"ReactivateOrderCommand must be created via NewReactivateOrderCommand constructor",
)

// ReactivateOrderCommand reverses a cancellation. Only admin and manager may
// issue it.
type ReactivateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   order.Actor
	note    string

	guard guard.ConstructorGuard
}

func NewReactivateOrderCommand(orderID kernel.UUID, actor order.Actor, note string) (ReactivateOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return ReactivateOrderCommand{}, err
	}

	return ReactivateOrderCommand{
		orderID: orderID,
		actor:   actor,
		note:    strings.TrimSpace(note),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ReactivateOrderCommand) Validate() error {
	return c.guard.Validate(ErrReactivateOrderCommandIsNotConstructed)
}

func (c ReactivateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ReactivateOrderCommand) Actor() order.Actor {
	return c.actor
}

func (c ReactivateOrderCommand) Note() string {
	return c.note
}

package commands

import (
	"errors"
	"strings"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/pkg/errs"
	"pharmadelivery/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrLocationIsPartial = errs.NewValueIsInvalidError("location requires both latitude and longitude")
)

// CreateOrderParams is the raw input of NewCreateOrderCommand.
// Latitude and Longitude are either both set or both nil.
type CreateOrderParams struct {
	OrderID        kernel.UUID
	Number         string
	CustomerName   string
	CustomerPhone  string
	Address        string
	Latitude       *float64
	Longitude      *float64
	Items          []string
	Price          string
	PharmacyUnitID kernel.UUID
	Actor          order.Actor
}

// CreateOrderCommand represents a request to place a new pharmacy order.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(CreateOrderParams{
//	    OrderID:        kernel.NewUUID(),
//	    Number:         "1042",
//	    CustomerName:   "Maria Souza",
//	    CustomerPhone:  "+55 11 99999-0000",
//	    Address:        "Av. Paulista, 1000",
//	    Items:          []string{"Dipirona 500mg"},
//	    Price:          "12.50",
//	    PharmacyUnitID: unitID,
//	    Actor:          order.ActorManager,
//	})
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	params   order.NewOrderParams
	location *kernel.Location

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the transport-level input. Business
// validation of the order fields happens in order.NewOrder.
func NewCreateOrderCommand(p CreateOrderParams) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	price, priceErr := kernel.ParseMoney(p.Price)
	if err := errors.Join(
		p.OrderID.Validate(),
		p.Actor.Validate(),
		priceErr,
		cmd.setLocation(p.Latitude, p.Longitude),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	cmd.params = order.NewOrderParams{
		ID:             p.OrderID,
		Number:         strings.TrimSpace(p.Number),
		CustomerName:   p.CustomerName,
		CustomerPhone:  p.CustomerPhone,
		Address:        p.Address,
		Location:       cmd.location,
		Items:          append([]string(nil), p.Items...),
		Price:          price,
		PharmacyUnitID: p.PharmacyUnitID,
		CreatedBy:      p.Actor,
	}
	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.params.ID
}

// Params returns the order fields without the creation timestamp, which the
// handler stamps.
func (c CreateOrderCommand) Params() order.NewOrderParams {
	p := c.params
	p.Items = append([]string(nil), c.params.Items...)
	return p
}

func (c *CreateOrderCommand) setLocation(latitude, longitude *float64) error {
	if latitude == nil && longitude == nil {
		return nil
	}
	if latitude == nil || longitude == nil {
		return ErrLocationIsPartial
	}
	location, err := kernel.NewLocation(*latitude, *longitude)
	if err != nil {
		return err
	}
	c.location = &location
	return nil
}

package commands

import (
	"errors"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/guard"
)

var ErrCreateDeliverymanCommandIsNotConstructed = errors.New(
	"CreateDeliverymanCommand must be created via NewCreateDeliverymanCommand constructor",
)

// CreateDeliverymanCommand registers a courier with a pharmacy unit.
type CreateDeliverymanCommand struct { //nolint:recvcheck //using for validation
	deliverymanID  kernel.UUID
	name           string
	pharmacyUnitID kernel.UUID
	chavePix       string

	guard guard.ConstructorGuard
}

func NewCreateDeliverymanCommand(
	deliverymanID kernel.UUID,
	name string,
	pharmacyUnitID kernel.UUID,
	chavePix string,
) (CreateDeliverymanCommand, error) {
	if err := errors.Join(deliverymanID.Validate(), pharmacyUnitID.Validate()); err != nil {
		return CreateDeliverymanCommand{}, err
	}

	return CreateDeliverymanCommand{
		deliverymanID:  deliverymanID,
		name:           name,
		pharmacyUnitID: pharmacyUnitID,
		chavePix:       chavePix,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c CreateDeliverymanCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliverymanCommandIsNotConstructed)
}

func (c CreateDeliverymanCommand) DeliverymanID() kernel.UUID {
	return c.deliverymanID
}

func (c CreateDeliverymanCommand) Name() string {
	return c.name
}

func (c CreateDeliverymanCommand) PharmacyUnitID() kernel.UUID {
	return c.pharmacyUnitID
}

func (c CreateDeliverymanCommand) ChavePix() string {
	return c.chavePix
}

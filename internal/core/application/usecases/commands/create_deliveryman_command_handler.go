package commands

import (
	"context"

	"pharmadelivery/internal/core/domain/model/deliveryman"
)

type CreateDeliverymanCommandHandler struct {
	uowFactory DeliverymanUoWFactory
}

func NewCreateDeliverymanCommandHandler(uowFactory DeliverymanUoWFactory) CreateDeliverymanCommandHandler {
	return CreateDeliverymanCommandHandler{uowFactory: uowFactory}
}

func (h CreateDeliverymanCommandHandler) Handle(ctx context.Context, cmd CreateDeliverymanCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	d, err := deliveryman.NewDeliveryman(cmd.DeliverymanID(), cmd.Name(), cmd.PharmacyUnitID(), cmd.ChavePix())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DeliverymanRepository().Add(ctx, d); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

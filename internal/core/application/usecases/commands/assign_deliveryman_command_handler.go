package commands

import (
	"context"
	"log/slog"

	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/ports"
)

// AssignDeliverymanCommandHandler copies the deliveryman's name onto the
// order together with the vehicle plate.
type AssignDeliverymanCommandHandler struct {
	uowFactory UoWFactory
	retrier    ConflictRetrier
	clock      ports.Clock
	logger     *slog.Logger
}

func NewAssignDeliverymanCommandHandler(
	uowFactory UoWFactory,
	retrier ConflictRetrier,
	clock ports.Clock,
	logger *slog.Logger,
) AssignDeliverymanCommandHandler {
	return AssignDeliverymanCommandHandler{
		uowFactory: uowFactory,
		retrier:    retrier,
		clock:      clock,
		logger:     logger.With("component", "assign_deliveryman_handler"),
	}
}

func (h AssignDeliverymanCommandHandler) Handle(ctx context.Context, cmd AssignDeliverymanCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.retrier.Do(ctx, "order", func(ctx context.Context) error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		d, err := uow.DeliverymanRepository().Get(ctx, cmd.DeliverymanID())
		if err != nil {
			return err
		}

		orderRepo := uow.OrderRepository()
		o, err := orderRepo.Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}

		if err = o.AssignDeliveryman(order.Assignment{
			DeliverymanID:   d.ID(),
			DeliverymanName: d.Name(),
			LicensePlate:    cmd.LicensePlate(),
		}, h.clock.Now()); err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, o); err != nil {
			return err
		}

		if err = uow.Commit(ctx); err != nil {
			return err
		}

		h.logger.InfoContext(ctx, "Deliveryman assigned",
			"orderId", o.ID().String(),
			"deliverymanId", d.ID().String(),
		)
		return nil
	})
}

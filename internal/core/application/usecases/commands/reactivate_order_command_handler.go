package commands

import (
	"context"
	"log/slog"

	"pharmadelivery/internal/core/ports"
)

// ReactivateOrderCommandHandler returns a cancelled order to Em Preparação,
// clears its courier assignment and frees the deliveryman still holding it.
type ReactivateOrderCommandHandler struct {
	uowFactory UoWFactory
	retrier    ConflictRetrier
	clock      ports.Clock
	logger     *slog.Logger
}

func NewReactivateOrderCommandHandler(
	uowFactory UoWFactory,
	retrier ConflictRetrier,
	clock ports.Clock,
	logger *slog.Logger,
) ReactivateOrderCommandHandler {
	return ReactivateOrderCommandHandler{
		uowFactory: uowFactory,
		retrier:    retrier,
		clock:      clock,
		logger:     logger.With("component", "reactivate_order_handler"),
	}
}

func (h ReactivateOrderCommandHandler) Handle(ctx context.Context, cmd ReactivateOrderCommand) error {
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

		orderRepo := uow.OrderRepository()
		o, err := orderRepo.Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}

		assigned := o.DeliverymanID()
		from := o.Status()

		if err = o.Reactivate(cmd.Actor(), cmd.Note(), h.clock.Now()); err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, o); err != nil {
			return err
		}

		if err = syncDeliveryman(ctx, uow.DeliverymanRepository(), o, from, assigned, h.logger); err != nil {
			return err
		}

		if err = uow.Commit(ctx); err != nil {
			return err
		}

		h.logger.InfoContext(ctx, "Order reactivated",
			"orderId", o.ID().String(),
			"actor", cmd.Actor().String(),
		)
		return nil
	})
}

package commands

import (
	"context"
	"log/slog"

	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/ports"
)

// ChangeOrderStatusCommandHandler applies status transitions.
//
// The order row and its history are written in one compare-and-swap update.
// When another actor wrote the order in between, the transition is
// re-validated against the fresh record and re-applied; if it is no longer
// valid the resulting InvalidTransition is returned instead.
//
// Courier side effects run in the same transaction:
//   - A caminho occupies the assigned deliveryman
//   - Entregue, Cancelado and reactivation release it when it carries this order
type ChangeOrderStatusCommandHandler struct {
	uowFactory UoWFactory
	retrier    ConflictRetrier
	policy     order.TransitionPolicy
	clock      ports.Clock
	logger     *slog.Logger
}

func NewChangeOrderStatusCommandHandler(
	uowFactory UoWFactory,
	retrier ConflictRetrier,
	policy order.TransitionPolicy,
	clock ports.Clock,
	logger *slog.Logger,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		retrier:    retrier,
		policy:     policy,
		clock:      clock,
		logger:     logger.With("component", "change_order_status_handler"),
	}
}

func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.retrier.Do(ctx, "order", func(ctx context.Context) error {
		return h.apply(ctx, cmd)
	})
}

func (h ChangeOrderStatusCommandHandler) apply(ctx context.Context, cmd ChangeOrderStatusCommand) error {
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

	if err = o.ApplyTransition(order.TransitionRequest{
		Target: cmd.Target(),
		Actor:  cmd.Actor(),
		Reason: cmd.Reason(),
		Note:   cmd.Note(),
		At:     h.clock.Now(),
	}, h.policy); err != nil {
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

	h.logger.InfoContext(ctx, "Order status changed",
		"orderId", o.ID().String(),
		"from", from.String(),
		"to", o.Status().String(),
		"actor", cmd.Actor().String(),
	)
	return nil
}

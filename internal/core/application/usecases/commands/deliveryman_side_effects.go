package commands

import (
	"context"
	"errors"
	"log/slog"

	"pharmadelivery/internal/core/domain/model/deliveryman"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/ports"
	"pharmadelivery/internal/pkg/errs"
)

// syncDeliveryman keeps the duty state of the deliveryman assigned before the
// transition in line with the order. A missing or busy deliveryman is logged
// and never blocks the order transition.
func syncDeliveryman(
	ctx context.Context,
	repo ports.DeliverymanRepository,
	o *order.Order,
	from order.Status,
	assigned *kernel.UUID,
	logger *slog.Logger,
) error {
	if assigned == nil {
		return nil
	}

	occupy := o.IsInDelivery()
	release := o.IsDelivered() || o.IsCancelled() || (from == order.Cancelled && o.IsInPreparation())
	if !occupy && !release {
		return nil
	}

	d, err := repo.Get(ctx, *assigned)
	if errors.Is(err, errs.ErrObjectNotFound) {
		logger.WarnContext(ctx, "Assigned deliveryman not found",
			"orderId", o.ID().String(),
			"deliverymanId", assigned.String(),
		)
		return nil
	}
	if err != nil {
		return err
	}

	if occupy {
		if err = d.Occupy(o.ID()); err != nil {
			if errors.Is(err, deliveryman.ErrDeliverymanIsBusy) || errors.Is(err, deliveryman.ErrDeliverymanIsOffDuty) {
				logger.WarnContext(ctx, "Deliveryman not occupied",
					"orderId", o.ID().String(),
					"deliverymanId", assigned.String(),
					"error", err,
				)
				return nil
			}
			return err
		}
		return repo.Update(ctx, d)
	}

	if d.Release(o.ID()) {
		return repo.Update(ctx, d)
	}
	return nil
}

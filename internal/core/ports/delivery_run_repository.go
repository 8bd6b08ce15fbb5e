package ports

import (
	"context"

	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"
)

// DeliveryRunRepository defines the persistence contract for delivery runs.
type DeliveryRunRepository interface {
	// Add persists a new run with its initial orders.
	Add(ctx context.Context, aggregate *deliveryrun.DeliveryRun) error

	// Update writes the run row and inserts the orders and checkpoints added
	// since the run was loaded. Recorded checkpoints are never rewritten.
	// Only active runs can be updated; a run completed concurrently yields
	// deliveryrun.ErrDeliveryRunIsCompleted.
	Update(ctx context.Context, aggregate *deliveryrun.DeliveryRun) error

	Get(ctx context.Context, id kernel.UUID) (*deliveryrun.DeliveryRun, error)

	// FindByOrder returns every run, active or completed, claiming the order.
	FindByOrder(ctx context.Context, orderID kernel.UUID) ([]*deliveryrun.DeliveryRun, error)

	// FindActiveByDeliveryman returns the active runs of a deliveryman.
	FindActiveByDeliveryman(ctx context.Context, deliverymanID kernel.UUID) ([]*deliveryrun.DeliveryRun, error)

	// FindActive returns all active runs.
	FindActive(ctx context.Context) ([]*deliveryrun.DeliveryRun, error)
}

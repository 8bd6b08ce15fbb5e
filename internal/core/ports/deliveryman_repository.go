package ports

import (
	"context"

	"pharmadelivery/internal/core/domain/model/deliveryman"
	"pharmadelivery/internal/core/domain/model/kernel"
)

// DeliverymanRepository defines the persistence contract for deliverymen.
type DeliverymanRepository interface {
	Add(ctx context.Context, aggregate *deliveryman.Deliveryman) error
	Update(ctx context.Context, aggregate *deliveryman.Deliveryman) error
	Get(ctx context.Context, id kernel.UUID) (*deliveryman.Deliveryman, error)
}

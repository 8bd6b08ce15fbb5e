package ports

import (
	"context"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
)

// OrderFilter narrows order listings. Nil fields are not applied.
type OrderFilter struct {
	From           *time.Time
	To             *time.Time
	PharmacyUnitID *kernel.UUID
	DeliverymanID  *kernel.UUID
	Status         *order.Status
}

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes the order if the stored version still equals
	// aggregate.Version() and advances the version on success. A concurrent
	// write in between yields errs.ErrVersionIsInvalid; the row is untouched.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves the full order, history included.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// Find lists orders matching filter, newest first.
	Find(ctx context.Context, filter OrderFilter) ([]*order.Order, error)
}

package queries

import (
	"errors"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/guard"
)

var ErrGetTipKeyQueryIsNotConstructed = errors.New(
	"GetTipKeyQuery must be created via NewGetTipKeyQuery constructor",
)

// GetTipKeyQuery discloses the payout key of the deliveryman who delivered
// an order. It does not depend on the review.
type GetTipKeyQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetTipKeyQuery(orderID kernel.UUID) (GetTipKeyQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetTipKeyQuery{}, err
	}
	return GetTipKeyQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTipKeyQuery) Validate() error {
	return q.guard.Validate(ErrGetTipKeyQueryIsNotConstructed)
}

func (q GetTipKeyQuery) OrderID() kernel.UUID {
	return q.orderID
}

type GetTipKeyQueryResponse struct {
	DeliverymanName string
	ChavePix        string
}

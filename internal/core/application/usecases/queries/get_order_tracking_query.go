package queries

import (
	"errors"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/guard"
)

var ErrGetOrderTrackingQueryIsNotConstructed = errors.New(
	"GetOrderTrackingQuery must be created via NewGetOrderTrackingQuery constructor",
)

// GetOrderTrackingQuery reads one order with its timing and run correlation,
// projected for view.
//
// Example:
//
//	query, err := NewGetOrderTrackingQuery(orderID, ViewCustomer)
//	snapshot, err := handler.Handle(ctx, query)
type GetOrderTrackingQuery struct {
	orderID kernel.UUID
	view    View

	guard guard.ConstructorGuard
}

func NewGetOrderTrackingQuery(orderID kernel.UUID, view View) (GetOrderTrackingQuery, error) {
	if err := errors.Join(orderID.Validate(), view.Validate()); err != nil {
		return GetOrderTrackingQuery{}, err
	}
	return GetOrderTrackingQuery{orderID: orderID, view: view, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTrackingQueryIsNotConstructed)
}

func (q GetOrderTrackingQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetOrderTrackingQuery) View() View {
	return q.view
}

package queries

import (
	"errors"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/ports"
	"pharmadelivery/internal/pkg/errs"
	"pharmadelivery/internal/pkg/guard"
)

var (
	ErrListOrdersQueryIsNotConstructed = errors.New(
		"ListOrdersQuery must be created via NewListOrdersQuery constructor",
	)
	ErrPeriodIsInverted = errors.New("from must not be after to")
)

// ListOrdersQuery lists orders for the back-office screens, newest first.
//
// Example:
//
//	from := time.Now().Add(-24 * time.Hour)
//	query, err := NewListOrdersQuery(ports.OrderFilter{From: &from})
type ListOrdersQuery struct {
	filter ports.OrderFilter

	guard guard.ConstructorGuard
}

func NewListOrdersQuery(filter ports.OrderFilter) (ListOrdersQuery, error) {
	var errList []error
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("from", ErrPeriodIsInverted))
	}
	if filter.PharmacyUnitID != nil {
		errList = append(errList, filter.PharmacyUnitID.Validate())
	}
	if filter.DeliverymanID != nil {
		errList = append(errList, filter.DeliverymanID.Validate())
	}
	if filter.Status != nil {
		errList = append(errList, filter.Status.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return ListOrdersQuery{}, err
	}

	return ListOrdersQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Filter() ports.OrderFilter {
	return q.filter
}

// ListOrdersQueryResponse is one row of the order listing.
type ListOrdersQueryResponse struct {
	ID               kernel.UUID
	Number           string
	Status           order.Status
	CustomerName     string
	Address          string
	HasLocation      bool
	Price            string
	DeliverymanName  string
	CreatedAt        time.Time
	LastStatusUpdate time.Time
}

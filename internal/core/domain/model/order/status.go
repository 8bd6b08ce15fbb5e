package order

import (
	"fmt"

	"pharmadelivery/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// Canonical flow:
//
//	Pendente ──> Em Preparação ──> A caminho ──> Entregue
//	    │              │               │
//	    └──────────────┴───────────────┴──> Cancelado ──(reactivation)──> Em Preparação
//
// Entregue is terminal. Cancelado is terminal except for the reactivation
// performed by back-office staff.
//
// The string form is the persisted value and is shared with the reporting
// warehouse, so it stays in Portuguese.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of a freshly created order.
	Pending

	// InPreparation means the pharmacy is picking and packing the items.
	InPreparation

	// OnTheWay means a courier left with the order.
	OnTheWay

	// Delivered is terminal: the customer received the order.
	Delivered

	// Cancelled is terminal except for reactivation.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:       "Unknown",
		Pending:       "Pendente",
		InPreparation: "Em Preparação",
		OnTheWay:      "A caminho",
		Delivered:     "Entregue",
		Cancelled:     "Cancelado",
	}
}

// ParseStatus converts the persisted/wire value into a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// AllStatuses lists the valid statuses in canonical order.
func AllStatuses() []Status {
	return []Status{Pending, InPreparation, OnTheWay, Delivered, Cancelled}
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status ends the normal lifecycle.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// Next returns the canonical successor. Terminal statuses have none.
func (s Status) Next() (Status, bool) {
	switch s {
	case Pending:
		return InPreparation, true
	case InPreparation:
		return OnTheWay, true
	case OnTheWay:
		return Delivered, true
	default:
		return Unknown, false
	}
}

package queries

import (
	"errors"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/guard"
)

var ErrGetContestedOrdersQueryIsNotConstructed = errors.New(
	"GetContestedOrdersQuery must be created via NewGetContestedOrdersQuery constructor",
)

// GetContestedOrdersQuery finds orders claimed by more than one active
// delivery run.
type GetContestedOrdersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetContestedOrdersQuery() GetContestedOrdersQuery {
	return GetContestedOrdersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetContestedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetContestedOrdersQueryIsNotConstructed)
}

// GetContestedOrdersQueryResponse lists the active runs claiming OrderID,
// most recently updated first.
type GetContestedOrdersQueryResponse struct {
	OrderID kernel.UUID
	RunIDs  []kernel.UUID
}

package order_test

import (
	"testing"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func validParams() order.NewOrderParams {
	loc, _ := kernel.NewLocation(-23.5613, -46.6565)
	return order.NewOrderParams{
		ID:             kernel.NewUUID(),
		Number:         "1042",
		CustomerName:   "Maria Souza",
		CustomerPhone:  "+55 11 99999-0000",
		Address:        "Av. Paulista, 1000",
		Location:       &loc,
		Items:          []string{"Dipirona 500mg", "Protetor solar FPS 50"},
		Price:          kernel.MustMoney("57.80"),
		PharmacyUnitID: kernel.NewUUID(),
		CreatedAt:      t0,
		CreatedBy:      order.ActorManager,
	}
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(validParams())
	require.NoError(t, err)
	return o
}

func move(t *testing.T, o *order.Order, target order.Status, at time.Time) {
	t.Helper()
	require.NoError(t, o.ApplyTransition(order.TransitionRequest{
		Target: target,
		Actor:  order.ActorAdmin,
		Reason: "needed for cancel",
		At:     at,
	}, order.PermissivePolicy))
}

package order_test

import (
	"testing"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	t.Run("should create pending order with one history entry", func(t *testing.T) {
		p := validParams()

		o, err := order.NewOrder(p)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(p.ID))
		assert.Equal(t, "1042", o.Number())
		assert.Equal(t, order.Pending, o.Status())
		assert.True(t, o.IsPending())
		assert.Equal(t, t0, o.CreatedAt())
		assert.Equal(t, t0, o.LastStatusUpdate())
		assert.Equal(t, "R$ 57,80", o.Price().String())
		assert.Equal(t, []string{"Dipirona 500mg", "Protetor solar FPS 50"}, o.Items())
		assert.Nil(t, o.Assignment())
		assert.Nil(t, o.Review())
		assert.False(t, o.ReviewRequested())
		assert.Equal(t, int64(0), o.Version())

		require.Equal(t, 1, o.History().Len())
		entry, _ := o.History().Last()
		assert.Equal(t, order.Pending, entry.Status())
		assert.Equal(t, order.ActorManager, entry.Actor())
	})

	t.Run("should accept an order without location", func(t *testing.T) {
		p := validParams()
		p.Location = nil

		o, err := order.NewOrder(p)

		require.NoError(t, err)
		_, ok := o.Location()
		assert.False(t, ok)
	})

	t.Run("should default creator to system", func(t *testing.T) {
		p := validParams()
		p.CreatedBy = ""

		o, err := order.NewOrder(p)

		require.NoError(t, err)
		entry, _ := o.History().Last()
		assert.Equal(t, order.ActorSystem, entry.Actor())
	})

	t.Run("should report every missing field together", func(t *testing.T) {
		o, err := order.NewOrder(order.NewOrderParams{})

		require.Error(t, err)
		assert.Nil(t, o)
		for _, field := range []string{"UUID", "number", "customerName", "customerPhone", "address", "items", "pharmacyUnitId", "createdAt"} {
			assert.Contains(t, err.Error(), field)
		}
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject blank items", func(t *testing.T) {
		p := validParams()
		p.Items = []string{"Dipirona", "  "}

		_, err := order.NewOrder(p)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "item 1 is blank")
	})

	t.Run("should copy items", func(t *testing.T) {
		p := validParams()
		o, _ := order.NewOrder(p)

		items := o.Items()
		items[0] = "changed"

		assert.Equal(t, "Dipirona 500mg", o.Items()[0])
	})
}

func TestRestoreOrder(t *testing.T) {
	t.Run("should restore full state", func(t *testing.T) {
		p := validParams()
		entry, _ := order.NewHistoryEntry(order.Pending, t0, order.ActorSystem, "", "")
		delivered, _ := order.NewHistoryEntry(order.Delivered, t0.Add(time.Hour), order.ActorCourier, "", "")
		courierID := kernel.NewUUID()

		o, err := order.RestoreOrder(order.RestoreParams{
			NewOrderParams:   p,
			Status:           order.Delivered,
			UpdatedAt:        t0.Add(2 * time.Hour),
			LastStatusUpdate: t0.Add(time.Hour),
			Assignment:       &order.Assignment{DeliverymanID: courierID, DeliverymanName: "João", LicensePlate: "ABC1D23"},
			Review:           &order.Review{Rating: 5, Comment: "rápido", Date: t0.Add(2 * time.Hour)},
			ReviewRequested:  true,
			History:          order.NewHistory(entry, delivered),
			Version:          7,
		})

		require.NoError(t, err)
		assert.True(t, o.IsDelivered())
		assert.Equal(t, int64(7), o.Version())
		assert.Equal(t, 2, o.History().Len())
		require.NotNil(t, o.DeliverymanID())
		assert.True(t, o.DeliverymanID().IsEqual(courierID))
		assert.Equal(t, 5, o.Review().Rating)
		assert.True(t, o.ReviewRequested())
	})

	t.Run("should reject invalid status", func(t *testing.T) {
		_, err := order.RestoreOrder(order.RestoreParams{NewOrderParams: validParams()})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status")
	})
}

func TestOrder_Validate(t *testing.T) {
	var nilOrder *order.Order
	assert.Equal(t, order.ErrOrderIsNotConstructed, nilOrder.Validate())
	assert.Equal(t, order.ErrOrderIsNotConstructed, (&order.Order{}).Validate())
}

func TestOrder_Flags_AreDerivedFromStatus(t *testing.T) {
	o := newOrder(t)

	flags := func() []bool {
		return []bool{o.IsPending(), o.IsInPreparation(), o.IsInDelivery(), o.IsDelivered()}
	}

	assert.Equal(t, []bool{true, false, false, false}, flags())
	move(t, o, order.InPreparation, t0.Add(time.Minute))
	assert.Equal(t, []bool{false, true, false, false}, flags())
	move(t, o, order.OnTheWay, t0.Add(2*time.Minute))
	assert.Equal(t, []bool{false, false, true, false}, flags())
	move(t, o, order.Delivered, t0.Add(3*time.Minute))
	assert.Equal(t, []bool{false, false, false, true}, flags())
}

func TestOrder_AssignDeliveryman(t *testing.T) {
	courierID := kernel.NewUUID()

	t.Run("should assign and normalize plate", func(t *testing.T) {
		o := newOrder(t)

		err := o.AssignDeliveryman(order.Assignment{
			DeliverymanID:   courierID,
			DeliverymanName: "João",
			LicensePlate:    " abc1d23 ",
		}, t0.Add(time.Minute))

		require.NoError(t, err)
		a := o.Assignment()
		require.NotNil(t, a)
		assert.Equal(t, "ABC1D23", a.LicensePlate)
		assert.Equal(t, t0.Add(time.Minute), o.UpdatedAt())
		assert.Equal(t, 1, o.History().Len(), "assignment is not a status transition")
	})

	t.Run("should require courier id and name", func(t *testing.T) {
		o := newOrder(t)

		err := o.AssignDeliveryman(order.Assignment{}, t0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "UUID")
		assert.Contains(t, err.Error(), "deliverymanName")
	})

	t.Run("should refuse terminal orders", func(t *testing.T) {
		o := newOrder(t)
		move(t, o, order.Delivered, t0.Add(time.Minute))

		err := o.AssignDeliveryman(order.Assignment{DeliverymanID: courierID, DeliverymanName: "João"}, t0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

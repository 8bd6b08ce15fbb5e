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

var allActors = []order.Actor{order.ActorAdmin, order.ActorManager, order.ActorCourier, order.ActorSystem}

func TestOrder_ApplyTransition(t *testing.T) {
	t.Run("should append exactly one entry per accepted transition", func(t *testing.T) {
		o := newOrder(t)
		targets := []order.Status{order.InPreparation, order.OnTheWay, order.Delivered}

		for i, target := range targets {
			at := t0.Add(time.Duration(i+1) * 10 * time.Minute)
			before := o.History().Len()

			move(t, o, target, at)

			assert.Equal(t, before+1, o.History().Len())
			assert.Equal(t, target, o.Status())
			assert.Equal(t, at, o.LastStatusUpdate())
			last, _ := o.History().Last()
			assert.Equal(t, target, last.Status())
		}
	})

	t.Run("should never leave delivered", func(t *testing.T) {
		for _, actor := range allActors {
			for _, target := range order.AllStatuses() {
				o := newOrder(t)
				move(t, o, order.Delivered, t0.Add(time.Minute))

				err := o.ApplyTransition(order.TransitionRequest{
					Target: target,
					Actor:  actor,
					Reason: "any",
					At:     t0.Add(2 * time.Minute),
				}, order.PermissivePolicy)

				require.ErrorIs(t, err, errs.ErrInvalidTransition, "%s by %s", target, actor)
				require.ErrorIs(t, err, order.ErrOrderIsDelivered)
				assert.NotErrorIs(t, err, errs.ErrForbidden)
				assert.Equal(t, order.Delivered, o.Status())
				assert.Equal(t, 2, o.History().Len())
			}
		}
	})

	t.Run("should require reason to cancel", func(t *testing.T) {
		for _, actor := range allActors {
			o := newOrder(t)

			err := o.ApplyTransition(order.TransitionRequest{
				Target: order.Cancelled,
				Actor:  actor,
				Reason: "   ",
				At:     t0.Add(time.Minute),
			}, order.PermissivePolicy)

			require.ErrorIs(t, err, errs.ErrInvalidTransition, actor.String())
			require.ErrorIs(t, err, errs.ErrValueIsRequired)
			assert.Equal(t, order.Pending, o.Status())
			assert.Equal(t, 1, o.History().Len())
		}
	})

	t.Run("should keep cancelled orders closed for couriers", func(t *testing.T) {
		for _, target := range []order.Status{order.OnTheWay, order.Delivered} {
			o := newOrder(t)
			require.NoError(t, o.ApplyTransition(order.TransitionRequest{
				Target: order.Cancelled,
				Actor:  order.ActorManager,
				Reason: "sem estoque",
				At:     t0.Add(time.Minute),
			}, order.PermissivePolicy))

			err := o.ApplyTransition(order.TransitionRequest{
				Target: target,
				Actor:  order.ActorCourier,
				At:     t0.Add(2 * time.Minute),
			}, order.PermissivePolicy)

			require.ErrorIs(t, err, errs.ErrInvalidTransition, target.String())
			require.ErrorIs(t, err, order.ErrOrderIsCancelled)
			assert.True(t, o.IsCancelled())
		}
	})

	t.Run("should cancel with reason and keep assignment", func(t *testing.T) {
		o := newOrder(t)
		require.NoError(t, o.AssignDeliveryman(order.Assignment{
			DeliverymanID:   kernel.NewUUID(),
			DeliverymanName: "João",
			LicensePlate:    "ABC1D23",
		}, t0))

		err := o.ApplyTransition(order.TransitionRequest{
			Target: order.Cancelled,
			Actor:  order.ActorManager,
			Reason: "cliente desistiu",
			At:     t0.Add(time.Minute),
		}, order.PermissivePolicy)

		require.NoError(t, err)
		assert.True(t, o.IsCancelled())
		assert.Equal(t, "cliente desistiu", o.CancelReason())
		assert.NotNil(t, o.Assignment())
		require.Equal(t, 2, o.History().Len())
		last, _ := o.History().Last()
		assert.Equal(t, order.Cancelled, last.Status())
		assert.Equal(t, "cliente desistiu", last.Reason())
	})

	t.Run("should only reactivate out of cancelled", func(t *testing.T) {
		o := newOrder(t)
		move(t, o, order.Cancelled, t0.Add(time.Minute))

		for _, target := range []order.Status{order.Pending, order.OnTheWay, order.Delivered, order.Cancelled} {
			err := o.ApplyTransition(order.TransitionRequest{
				Target: target,
				Actor:  order.ActorAdmin,
				Reason: "again",
				At:     t0.Add(2 * time.Minute),
			}, order.PermissivePolicy)

			require.ErrorIs(t, err, errs.ErrInvalidTransition, target.String())
			require.ErrorIs(t, err, order.ErrOrderIsCancelled)
		}

		move(t, o, order.InPreparation, t0.Add(3*time.Minute))
		assert.True(t, o.IsInPreparation())
		last, _ := o.History().Last()
		assert.Equal(t, order.ReactivationNote, last.Note())
	})

	t.Run("should allow skipping steps under permissive policy", func(t *testing.T) {
		o := newOrder(t)

		move(t, o, order.Delivered, t0.Add(time.Minute))

		assert.True(t, o.IsDelivered())
	})

	t.Run("should reject skipped steps under strict policy", func(t *testing.T) {
		o := newOrder(t)

		err := o.ApplyTransition(order.TransitionRequest{
			Target: order.OnTheWay,
			Actor:  order.ActorAdmin,
			At:     t0.Add(time.Minute),
		}, order.StrictPolicy)

		require.ErrorIs(t, err, order.ErrTransitionSkipsStep)
		assert.Equal(t, order.Pending, o.Status())
	})

	t.Run("should accept next step and cancel under strict policy", func(t *testing.T) {
		o := newOrder(t)

		require.NoError(t, o.ApplyTransition(order.TransitionRequest{
			Target: order.InPreparation,
			Actor:  order.ActorAdmin,
			At:     t0.Add(time.Minute),
		}, order.StrictPolicy))
		require.NoError(t, o.ApplyTransition(order.TransitionRequest{
			Target: order.Cancelled,
			Actor:  order.ActorAdmin,
			Reason: "sem estoque",
			At:     t0.Add(2 * time.Minute),
		}, order.StrictPolicy))

		assert.True(t, o.IsCancelled())
	})

	t.Run("should gate targets by role", func(t *testing.T) {
		cases := []struct {
			target  order.Status
			allowed bool
		}{
			{order.InPreparation, false},
			{order.OnTheWay, true},
			{order.Delivered, true},
			{order.Cancelled, false},
		}
		for _, c := range cases {
			o := newOrder(t)

			err := o.ApplyTransition(order.TransitionRequest{
				Target: c.target,
				Actor:  order.ActorCourier,
				Reason: "x",
				At:     t0.Add(time.Minute),
			}, order.PermissivePolicy)

			if c.allowed {
				require.NoError(t, err, c.target.String())
			} else {
				require.ErrorIs(t, err, errs.ErrForbidden, c.target.String())
				assert.Equal(t, 1, o.History().Len())
			}
		}
	})

	t.Run("should reject unknown target and actor", func(t *testing.T) {
		o := newOrder(t)

		err := o.ApplyTransition(order.TransitionRequest{
			Target: order.Status(42), Actor: order.ActorAdmin, At: t0,
		}, order.PermissivePolicy)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)

		err = o.ApplyTransition(order.TransitionRequest{
			Target: order.InPreparation, Actor: "customer", At: t0,
		}, order.PermissivePolicy)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should require timestamp", func(t *testing.T) {
		o := newOrder(t)

		err := o.ApplyTransition(order.TransitionRequest{
			Target: order.InPreparation, Actor: order.ActorAdmin,
		}, order.PermissivePolicy)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should clamp timestamps that go backwards", func(t *testing.T) {
		o := newOrder(t)
		move(t, o, order.InPreparation, t0.Add(10*time.Minute))

		move(t, o, order.OnTheWay, t0.Add(5*time.Minute))

		entries := o.History().Entries()
		for i := 1; i < len(entries); i++ {
			assert.False(t, entries[i].Timestamp().Before(entries[i-1].Timestamp()))
		}
		assert.Equal(t, t0.Add(10*time.Minute), o.LastStatusUpdate())
	})

	t.Run("should accept repeating the current status", func(t *testing.T) {
		o := newOrder(t)
		move(t, o, order.InPreparation, t0.Add(time.Minute))

		move(t, o, order.InPreparation, t0.Add(2*time.Minute))

		assert.Equal(t, 3, o.History().Len())
	})
}

func TestOrder_Reactivate(t *testing.T) {
	cancelled := func(t *testing.T) *order.Order {
		o := newOrder(t)
		require.NoError(t, o.AssignDeliveryman(order.Assignment{
			DeliverymanID:   kernel.NewUUID(),
			DeliverymanName: "João",
			LicensePlate:    "ABC1D23",
		}, t0))
		move(t, o, order.Cancelled, t0.Add(time.Minute))
		return o
	}

	t.Run("should clear assignment and append one entry with note", func(t *testing.T) {
		o := cancelled(t)
		before := o.History().Len()

		err := o.Reactivate(order.ActorManager, "cliente ligou", t0.Add(5*time.Minute))

		require.NoError(t, err)
		assert.True(t, o.IsInPreparation())
		assert.Nil(t, o.Assignment())
		assert.Nil(t, o.DeliverymanID())
		assert.Empty(t, o.CancelReason())
		require.Equal(t, before+1, o.History().Len())
		last, _ := o.History().Last()
		assert.Equal(t, order.InPreparation, last.Status())
		assert.Equal(t, "reactivated: cliente ligou", last.Note())
		assert.Equal(t, order.ActorManager, last.Actor())
	})

	t.Run("should be staff-only", func(t *testing.T) {
		for _, actor := range []order.Actor{order.ActorCourier, order.ActorSystem} {
			o := cancelled(t)

			err := o.Reactivate(actor, "", t0.Add(5*time.Minute))

			require.ErrorIs(t, err, errs.ErrForbidden)
			assert.True(t, o.IsCancelled())
		}
	})

	t.Run("should only apply to cancelled orders", func(t *testing.T) {
		o := newOrder(t)

		err := o.Reactivate(order.ActorAdmin, "", t0.Add(time.Minute))

		require.ErrorIs(t, err, order.ErrOrderIsNotCancelled)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}
